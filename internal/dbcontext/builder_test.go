package dbcontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/seeqdb/seeq/internal/connector"
	"github.com/seeqdb/seeq/internal/model"
)

// fakeConnector serves canned introspection results and query responses
// keyed by SQL text.
type fakeConnector struct {
	schema    *model.Schema
	responses map[string]*model.ResultSet
	pingErr   error
	queries   []string
}

func (f *fakeConnector) Connect(cfg connector.ConnectionConfig) error { return nil }

func (f *fakeConnector) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeConnector) Disconnect() error              { return nil }
func (f *fakeConnector) DB() *sqlx.DB                   { return nil }

func (f *fakeConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	return f.schema, nil
}

func (f *fakeConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	for i := range f.schema.Tables {
		if f.schema.Tables[i].Name == tableName {
			return &f.schema.Tables[i], nil
		}
	}
	return nil, fmt.Errorf("table %q not found", tableName)
}

func (f *fakeConnector) GetTableNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.schema.Tables))
	for _, t := range f.schema.Tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (f *fakeConnector) Query(ctx context.Context, sqlText string) (*model.ResultSet, error) {
	f.queries = append(f.queries, sqlText)
	if rs, ok := f.responses[sqlText]; ok {
		return rs, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", sqlText)
}

func (f *fakeConnector) DriverName() string { return "fake" }

func (f *fakeConnector) QuoteIdentifier(name string) string { return `"` + name + `"` }

func (f *fakeConnector) PeriodExpr(column string) string {
	return fmt.Sprintf("strftime('%%Y-%%m', %s)", f.QuoteIdentifier(column))
}

func salesSchema() *model.Schema {
	return &model.Schema{Tables: []model.TableSchema{{
		Name: "sales",
		Type: "table",
		Columns: []model.Column{
			{Name: "id", Position: 1, Type: "INTEGER", GoType: "int64", IsPrimaryKey: true},
			{Name: "amount", Position: 2, Type: "REAL", GoType: "float64"},
			{Name: "region", Position: 3, Type: "TEXT", GoType: "string", Nullable: true},
			{Name: "sale_date", Position: 4, Type: "DATE", GoType: "time.Time", Nullable: true},
		},
		PrimaryKey: []string{"id"},
	}}}
}

func salesResponses() map[string]*model.ResultSet {
	return map[string]*model.ResultSet{
		`SELECT COUNT(*) FROM "sales"`: {Columns: []string{"count"}, Rows: [][]any{{int64(2)}}},
		`SELECT * FROM "sales" LIMIT 10`: {
			Columns: []string{"id", "amount", "region", "sale_date"},
			Rows: [][]any{
				{int64(1), 100.0, "North", "2025-01-15"},
				{int64(2), 200.0, "South", "2025-02-01"},
			},
		},
		`SELECT COUNT(DISTINCT "region") FROM "sales"`: {Columns: []string{"count"}, Rows: [][]any{{int64(2)}}},
		`SELECT DISTINCT "region" FROM "sales" WHERE "region" IS NOT NULL ORDER BY "region" LIMIT 20`: {
			Columns: []string{"region"},
			Rows:    [][]any{{"North"}, {"South"}},
		},
		`SELECT MIN("sale_date"), MAX("sale_date") FROM "sales"`: {
			Columns: []string{"min", "max"},
			Rows:    [][]any{{"2025-01-15", "2025-02-01"}},
		},
		`SELECT strftime('%Y-%m', "sale_date") AS period, COUNT(*) FROM "sales" WHERE "sale_date" IS NOT NULL GROUP BY 1 ORDER BY 1`: {
			Columns: []string{"period", "count"},
			Rows:    [][]any{{"2025-01", int64(1)}, {"2025-02", int64(1)}},
		},
	}
}

func newTestBuilder(conn *fakeConnector) *Builder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(conn, DefaultConfig(), logger)
}

func TestBuildGathersTableStatistics(t *testing.T) {
	conn := &fakeConnector{schema: salesSchema(), responses: salesResponses()}

	sc, err := newTestBuilder(conn).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tc := sc.Table("sales")
	if tc == nil {
		t.Fatal("sales table missing from context")
	}
	if tc.RowCount != 2 {
		t.Errorf("row count = %d", tc.RowCount)
	}
	if tc.Sample.RowCount() != 2 {
		t.Errorf("sample rows = %d", tc.Sample.RowCount())
	}

	// Only the text column gets distinct enumeration.
	if len(tc.Distincts) != 1 || tc.Distincts[0].Column != "region" {
		t.Fatalf("distincts = %+v", tc.Distincts)
	}
	if got := tc.Distincts[0].Values; len(got) != 2 || got[0] != "North" {
		t.Errorf("distinct values = %v", got)
	}

	// Only the date column gets range and histogram statistics.
	if len(tc.Dates) != 1 || tc.Dates[0].Column != "sale_date" {
		t.Fatalf("dates = %+v", tc.Dates)
	}
	ds := tc.Dates[0]
	if ds.Min != "2025-01-15" || ds.Max != "2025-02-01" {
		t.Errorf("date range = %s to %s", ds.Min, ds.Max)
	}
	if len(ds.PerMonth) != 2 || ds.PerMonth[0].Period != "2025-01" || ds.PerMonth[0].Rows != 1 {
		t.Errorf("histogram = %+v", ds.PerMonth)
	}

	if sc.Text == "" {
		t.Error("rendered text missing")
	}
}

func TestBuildHighCardinalityColumnSkipsEnumeration(t *testing.T) {
	responses := salesResponses()
	responses[`SELECT COUNT(DISTINCT "region") FROM "sales"`] = &model.ResultSet{
		Columns: []string{"count"}, Rows: [][]any{{int64(5000)}},
	}
	conn := &fakeConnector{schema: salesSchema(), responses: responses}

	sc, err := newTestBuilder(conn).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cd := sc.Table("sales").Distincts[0]
	if !cd.HighCardinality {
		t.Error("column must be marked high-cardinality")
	}
	if len(cd.Values) != 0 {
		t.Errorf("values must not be enumerated, got %v", cd.Values)
	}
	for _, q := range conn.queries {
		if strings.HasPrefix(q, `SELECT DISTINCT "region"`) {
			t.Error("distinct enumeration query must be skipped above the cap")
		}
	}
}

func TestBuildContextUnavailable(t *testing.T) {
	conn := &fakeConnector{pingErr: errors.New("connection refused")}

	_, err := newTestBuilder(conn).Build(context.Background())
	if !errors.Is(err, ErrContextUnavailable) {
		t.Fatalf("expected ErrContextUnavailable, got %v", err)
	}
}

func TestRenderSectionHeaders(t *testing.T) {
	conn := &fakeConnector{schema: salesSchema(), responses: salesResponses()}

	sc, err := newTestBuilder(conn).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, header := range []string{
		"TABLE: sales",
		"COLUMNS:",
		"TOTAL ROWS: 2",
		"SAMPLE ROWS",
		"DISTINCT VALUES for region (2): North, South",
		"DATE RANGE for sale_date: 2025-01-15 to 2025-02-01",
		"ROWS PER MONTH for sale_date:",
		"2025-01: 1 rows",
	} {
		if !strings.Contains(sc.Text, header) {
			t.Errorf("rendered context missing %q\n%s", header, sc.Text)
		}
	}
	if !strings.Contains(sc.Text, "primary key") {
		t.Error("primary key annotation missing")
	}
}

func TestCacheBuildsOnceUntilInvalidated(t *testing.T) {
	conn := &fakeConnector{schema: salesSchema(), responses: salesResponses()}
	cache := NewCache(newTestBuilder(conn))

	first, err := cache.Context(context.Background())
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	second, err := cache.Context(context.Background())
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if first != second {
		t.Error("cache must return the same snapshot")
	}

	queriesBefore := len(conn.queries)
	cache.Invalidate()
	if _, err := cache.Context(context.Background()); err != nil {
		t.Fatalf("Context after invalidate: %v", err)
	}
	if len(conn.queries) == queriesBefore {
		t.Error("invalidate must force a rebuild")
	}
}
