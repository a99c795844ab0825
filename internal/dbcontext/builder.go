// Package dbcontext builds the schema context: a snapshot of the
// database's structure and representative content, rendered into the text
// block that grounds every generation and verification prompt.
package dbcontext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/seeqdb/seeq/internal/connector"
	"github.com/seeqdb/seeq/internal/model"
	"github.com/seeqdb/seeq/internal/observability"
)

// ErrContextUnavailable is returned when no live database connection
// exists to build the context from. Nothing downstream can proceed
// without it.
var ErrContextUnavailable = errors.New("dbcontext: database unavailable")

// Config bounds the content statistics gathered per table.
type Config struct {
	SampleRows  int // rows sampled per table
	DistinctCap int // max distinct values enumerated per text column
}

// DefaultConfig returns the builder defaults.
func DefaultConfig() Config {
	return Config{SampleRows: 10, DistinctCap: 20}
}

// Builder introspects a connected database and assembles a SchemaContext.
// It issues read-only queries only.
type Builder struct {
	conn   connector.Connector
	cfg    Config
	logger *slog.Logger
}

// NewBuilder creates a Builder over the given connector.
func NewBuilder(conn connector.Connector, cfg Config, logger *slog.Logger) *Builder {
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 10
	}
	if cfg.DistinctCap <= 0 {
		cfg.DistinctCap = 20
	}
	return &Builder{conn: conn, cfg: cfg, logger: logger}
}

// Build introspects every table in the working schema and gathers, per
// table: column metadata, a bounded row sample, the total row count,
// distinct values for low-cardinality text columns, and date-range plus
// rows-per-month statistics for date/time columns. The result carries the
// rendered text block in Text.
func (b *Builder) Build(ctx context.Context) (*model.SchemaContext, error) {
	start := time.Now()
	if err := b.conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}

	schema, err := b.conn.IntrospectSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: introspect: %v", ErrContextUnavailable, err)
	}

	sc := &model.SchemaContext{BuiltAt: time.Now()}
	for _, ts := range schema.Tables {
		tc, err := b.buildTable(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("build context for table %q: %w", ts.Name, err)
		}
		sc.Tables = append(sc.Tables, *tc)
	}

	sc.Text = Render(sc)
	observability.ObserveContextBuild(time.Since(start))
	b.logger.Info("schema context built",
		"tables", len(sc.Tables),
		"chars", len(sc.Text),
		"took_ms", time.Since(start).Milliseconds(),
	)
	return sc, nil
}

func (b *Builder) buildTable(ctx context.Context, ts model.TableSchema) (*model.TableContext, error) {
	quoted := b.conn.QuoteIdentifier(ts.Name)
	tc := &model.TableContext{Schema: ts}

	count, err := b.scalarInt(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted))
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	tc.RowCount = count

	sample, err := b.conn.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoted, b.cfg.SampleRows))
	if err != nil {
		return nil, fmt.Errorf("sample rows: %w", err)
	}
	tc.Sample = sample

	for _, col := range ts.Columns {
		switch {
		case col.IsTextual():
			cd, err := b.buildDistincts(ctx, quoted, col)
			if err != nil {
				return nil, fmt.Errorf("distinct values for %s.%s: %w", ts.Name, col.Name, err)
			}
			tc.Distincts = append(tc.Distincts, *cd)
		case col.IsTemporal():
			ds, err := b.buildDateStats(ctx, quoted, col)
			if err != nil {
				return nil, fmt.Errorf("date stats for %s.%s: %w", ts.Name, col.Name, err)
			}
			tc.Dates = append(tc.Dates, *ds)
		}
	}

	return tc, nil
}

// buildDistincts enumerates the distinct values of a text column, up to
// the configured cap. Columns whose cardinality exceeds the cap are marked
// high-cardinality and not enumerated, which keeps the result set bounded
// no matter what the column holds.
func (b *Builder) buildDistincts(ctx context.Context, quotedTable string, col model.Column) (*model.ColumnDistincts, error) {
	quotedCol := b.conn.QuoteIdentifier(col.Name)

	card, err := b.scalarInt(ctx, fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", quotedCol, quotedTable))
	if err != nil {
		return nil, err
	}

	cd := &model.ColumnDistincts{Column: col.Name, Cardinality: card}
	if card > int64(b.cfg.DistinctCap) {
		cd.HighCardinality = true
		return cd, nil
	}

	rs, err := b.conn.Query(ctx, fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s LIMIT %d",
		quotedCol, quotedTable, quotedCol, quotedCol, b.cfg.DistinctCap,
	))
	if err != nil {
		return nil, err
	}
	for _, row := range rs.Rows {
		if len(row) > 0 {
			cd.Values = append(cd.Values, model.FormatValue(row[0]))
		}
	}
	return cd, nil
}

// buildDateStats computes the overall min/max of a date/time column and a
// rows-per-month histogram, so the generator knows which periods actually
// contain data.
func (b *Builder) buildDateStats(ctx context.Context, quotedTable string, col model.Column) (*model.DateColumnStats, error) {
	quotedCol := b.conn.QuoteIdentifier(col.Name)

	rs, err := b.conn.Query(ctx, fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", quotedCol, quotedCol, quotedTable))
	if err != nil {
		return nil, err
	}
	ds := &model.DateColumnStats{Column: col.Name}
	if len(rs.Rows) > 0 && len(rs.Rows[0]) >= 2 {
		ds.Min = model.FormatValue(rs.Rows[0][0])
		ds.Max = model.FormatValue(rs.Rows[0][1])
	}

	periodExpr := b.conn.PeriodExpr(col.Name)
	hist, err := b.conn.Query(ctx, fmt.Sprintf(
		"SELECT %s AS period, COUNT(*) FROM %s WHERE %s IS NOT NULL GROUP BY 1 ORDER BY 1",
		periodExpr, quotedTable, quotedCol,
	))
	if err != nil {
		return nil, err
	}
	for _, row := range hist.Rows {
		if len(row) < 2 {
			continue
		}
		n, err := toInt64(row[1])
		if err != nil {
			return nil, fmt.Errorf("histogram count: %w", err)
		}
		ds.PerMonth = append(ds.PerMonth, model.PeriodCount{
			Period: model.FormatValue(row[0]),
			Rows:   n,
		})
	}
	return ds, nil
}

func (b *Builder) scalarInt(ctx context.Context, sqlText string) (int64, error) {
	rs, err := b.conn.Query(ctx, sqlText)
	if err != nil {
		return 0, err
	}
	if len(rs.Rows) == 0 || len(rs.Rows[0]) == 0 {
		return 0, fmt.Errorf("no scalar result for %q", sqlText)
	}
	return toInt64(rs.Rows[0][0])
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case []byte:
		return strconv.ParseInt(string(val), 10, 64)
	case string:
		return strconv.ParseInt(val, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected scalar type %T", v)
	}
}
