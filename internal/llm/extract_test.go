package llm

import (
	"errors"
	"testing"
)

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare statement",
			input: "SELECT * FROM sales WHERE region = 'North';",
			want:  "SELECT * FROM sales WHERE region = 'North';",
		},
		{
			name:  "missing terminator appended",
			input: "SELECT amount, region FROM sales",
			want:  "SELECT amount, region FROM sales;",
		},
		{
			name:  "sql fenced block preferred",
			input: "Here is the query you asked for:\n```sql\nSELECT SUM(amount) FROM sales;\n```\nLet me know if you need more.",
			want:  "SELECT SUM(amount) FROM sales;",
		},
		{
			name:  "plain fenced block",
			input: "```\nSELECT COUNT(*) FROM customers;\n```",
			want:  "SELECT COUNT(*) FROM customers;",
		},
		{
			name:  "label prefix stripped",
			input: "SQL: SELECT * FROM sales WHERE product = 'Laptop';",
			want:  "SELECT * FROM sales WHERE product = 'Laptop';",
		},
		{
			name:  "statement buried in prose",
			input: "Based on the schema, the right query is SELECT * FROM sales WHERE region IN ('North', 'South'); which filters both regions.",
			want:  "SELECT * FROM sales WHERE region IN ('North', 'South');",
		},
		{
			name:  "CTE statement",
			input: "WITH monthly AS (SELECT 1) SELECT * FROM monthly;",
			want:  "WITH monthly AS (SELECT 1) SELECT * FROM monthly;",
		},
		{
			name:  "case-insensitive keyword",
			input: "select * from sales;",
			want:  "select * from sales;",
		},
		{
			name:    "no statement keyword",
			input:   "I cannot answer that question from the available tables.",
			wantErr: true,
		},
		{
			name:    "too short to be a statement",
			input:   "SELECT;",
			wantErr: true,
		},
		{
			name:    "empty response",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSQL(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoStatement) {
					t.Fatalf("expected ErrNoStatement, got %v (sql %q)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractSQL = %q, want %q", got, tt.want)
			}
		})
	}
}
