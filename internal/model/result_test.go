package model

import (
	"strings"
	"testing"
	"time"
)

func TestResultSetRender(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"id", "region", "amount"},
		Rows: [][]any{
			{int64(1), "North", 100.5},
			{int64(2), "South", 200.0},
			{int64(3), "East", 50.0},
		},
	}

	out := rs.Render(2)
	if !strings.Contains(out, "rows: 3") {
		t.Errorf("summary line missing: %q", out)
	}
	if !strings.Contains(out, "id | region | amount") {
		t.Errorf("header row missing: %q", out)
	}
	if !strings.Contains(out, "1 | North | 100.5") {
		t.Errorf("data row missing: %q", out)
	}
	if strings.Contains(out, "East") {
		t.Errorf("row beyond maxRows leaked: %q", out)
	}
	if !strings.Contains(out, "1 more rows omitted") {
		t.Errorf("truncation summary missing: %q", out)
	}
}

func TestResultSetRenderEmpty(t *testing.T) {
	tests := []struct {
		name string
		rs   *ResultSet
	}{
		{"nil result", nil},
		{"no rows", &ResultSet{Columns: []string{"id"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rs.Render(10); got != "EMPTY RESULT (0 rows returned)" {
				t.Errorf("Render = %q", got)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	midnight := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	afternoon := time.Date(2025, 1, 15, 14, 30, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"bytes", []byte("North"), "North"},
		{"string", "South", "South"},
		{"date only", midnight, "2025-01-15"},
		{"timestamp", afternoon, "2025-01-15 14:30:05"},
		{"int", int64(42), "42"},
		{"float", 3.5, "3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRowMaps(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"id", "region"},
		Rows:    [][]any{{int64(1), "North"}},
	}

	maps := rs.RowMaps()
	if len(maps) != 1 {
		t.Fatalf("maps = %d", len(maps))
	}
	if maps[0]["region"] != "North" {
		t.Errorf("row map = %v", maps[0])
	}
}

func TestSessionLastExecuted(t *testing.T) {
	s := &ConversionSession{Attempts: []ConversionAttempt{
		{Index: 1, Executed: true, SQL: "first"},
		{Index: 2, Executed: false},
		{Index: 3, Executed: true, SQL: "third"},
		{Index: 4, Executed: false},
	}}

	if got := s.LastExecuted(); got == nil || got.SQL != "third" {
		t.Errorf("LastExecuted = %+v", got)
	}

	none := &ConversionSession{Attempts: []ConversionAttempt{{Index: 1}}}
	if got := none.LastExecuted(); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
