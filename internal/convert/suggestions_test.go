package convert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/seeqdb/seeq/internal/model"
)

func salesContext() *model.SchemaContext {
	return &model.SchemaContext{
		BuiltAt: time.Now(),
		Tables: []model.TableContext{
			{
				Schema:   model.TableSchema{Name: "sales"},
				RowCount: 100,
				Distincts: []model.ColumnDistincts{
					{Column: "region", Cardinality: 3, Values: []string{"East", "North", "South"}},
					{Column: "order_ref", Cardinality: 5000, HighCardinality: true},
				},
				Dates: []model.DateColumnStats{
					{
						Column: "sale_date",
						PerMonth: []model.PeriodCount{
							{Period: "2025-01", Rows: 40},
							{Period: "2025-02", Rows: 60},
						},
					},
				},
			},
		},
	}
}

func TestSuggestionsCoverIntentPatterns(t *testing.T) {
	s := NewSuggester(&fakeContextProvider{sc: salesContext()})

	got, err := s.Suggestions(context.Background(), 10)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}

	want := []string{
		"show all sales",
		"how many sales are there",
		"show all sales where region is East",
		"show East and North sales",
		"count sales per month by sale_date",
	}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// The high-cardinality column must not leak into any phrasing.
	for _, q := range got {
		if strings.Contains(q, "order_ref") {
			t.Errorf("high-cardinality column surfaced: %q", q)
		}
	}
}

func TestSuggestionsRespectLimit(t *testing.T) {
	s := NewSuggester(&fakeContextProvider{sc: salesContext()})

	got, err := s.Suggestions(context.Background(), 2)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("suggestions = %v", got)
	}
}

func TestSuggestionsContextError(t *testing.T) {
	wantErr := errors.New("database gone")
	s := NewSuggester(&fakeContextProvider{err: wantErr})

	if _, err := s.Suggestions(context.Background(), 5); !errors.Is(err, wantErr) {
		t.Errorf("error = %v", err)
	}
}
