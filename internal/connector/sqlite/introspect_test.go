package sqlite

import "testing"

func TestMapSQLiteType(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{"INTEGER", "int64"},
		{"int", "int64"},
		{"BIGINT", "int64"},
		{"TEXT", "string"},
		{"VARCHAR(255)", "string"},
		{"NVARCHAR(100)", "string"},
		{"CLOB", "string"},
		{"REAL", "float64"},
		{"DOUBLE", "float64"},
		{"NUMERIC(10,2)", "float64"},
		{"DECIMAL(10,2)", "float64"},
		{"BLOB", "[]byte"},
		{"", "[]byte"},
		{"BOOLEAN", "bool"},
		// DATE/TIME wins over the INT affinity check, so DATETIME does
		// not fall into the integer bucket.
		{"DATE", "time.Time"},
		{"DATETIME", "time.Time"},
		{"TIMESTAMP", "time.Time"},
		{"GEOMETRY", "interface{}"},
	}

	for _, tt := range tests {
		if got := mapSQLiteType(tt.typeName); got != tt.want {
			t.Errorf("mapSQLiteType(%q) = %q, want %q", tt.typeName, got, tt.want)
		}
	}
}

func TestDialectHelpers(t *testing.T) {
	c := &SQLiteConnector{}

	if got := c.DriverName(); got != "sqlite" {
		t.Errorf("DriverName = %q", got)
	}
	if got := c.QuoteIdentifier(`sa"les`); got != `"sa""les"` {
		t.Errorf("QuoteIdentifier = %q", got)
	}
	if got := c.PeriodExpr("sale_date"); got != `strftime('%Y-%m', "sale_date")` {
		t.Errorf("PeriodExpr = %q", got)
	}
}
