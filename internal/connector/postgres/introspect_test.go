package postgres

import "testing"

func TestMapPostgresType(t *testing.T) {
	tests := []struct {
		udtName  string
		dataType string
		want     string
	}{
		{"int4", "integer", "int32"},
		{"int8", "bigint", "int64"},
		{"float8", "double precision", "float64"},
		{"numeric", "numeric", "float64"},
		{"varchar", "character varying", "string"},
		{"text", "text", "string"},
		{"citext", "USER-DEFINED", "string"},
		{"bool", "boolean", "bool"},
		{"timestamptz", "timestamp with time zone", "time.Time"},
		{"date", "date", "time.Time"},
		{"time", "time without time zone", "string"},
		{"uuid", "uuid", "string"},
		{"jsonb", "jsonb", "interface{}"},
		{"bytea", "bytea", "[]byte"},
		{"_int4", "ARRAY", "interface{}"},
		{"mood", "USER-DEFINED", "string"},
	}

	for _, tt := range tests {
		if got := mapPostgresType(tt.udtName, tt.dataType); got != tt.want {
			t.Errorf("mapPostgresType(%q, %q) = %q, want %q", tt.udtName, tt.dataType, got, tt.want)
		}
	}
}

func TestDialectHelpers(t *testing.T) {
	c := &PostgresConnector{}

	if got := c.DriverName(); got != "postgres" {
		t.Errorf("DriverName = %q", got)
	}
	if got := c.QuoteIdentifier("sale_date"); got != `"sale_date"` {
		t.Errorf("QuoteIdentifier = %q", got)
	}
	if got := c.PeriodExpr("sale_date"); got != `to_char("sale_date", 'YYYY-MM')` {
		t.Errorf("PeriodExpr = %q", got)
	}
}
