package model

import "time"

// SchemaContext is an immutable snapshot of the database's structure and
// representative content, built once per connection lifetime and rendered
// into the text block every prompt is based on. Safe for concurrent reads
// after construction; invalidated only by explicit refresh.
type SchemaContext struct {
	BuiltAt time.Time      `json:"built_at"`
	Tables  []TableContext `json:"tables"`
	Text    string         `json:"-"` // rendered context block
}

// TableContext holds the introspected structure and content statistics for
// one table.
type TableContext struct {
	Schema    TableSchema       `json:"schema"`
	RowCount  int64             `json:"row_count"`
	Sample    *ResultSet        `json:"sample,omitempty"`
	Distincts []ColumnDistincts `json:"distincts,omitempty"`
	Dates     []DateColumnStats `json:"dates,omitempty"`
}

// ColumnDistincts enumerates the distinct values of a low-cardinality text
// column. When the cardinality exceeds the configured cap the values list
// is empty and HighCardinality is set, so prompt rendering can say so
// instead of dumping an unbounded list.
type ColumnDistincts struct {
	Column          string   `json:"column"`
	Cardinality     int64    `json:"cardinality"`
	Values          []string `json:"values,omitempty"`
	HighCardinality bool     `json:"high_cardinality"`
}

// DateColumnStats summarizes a date/time column: overall range plus a
// rows-per-month histogram. The histogram tells the generator which
// periods actually contain data, since a date filter on an empty month
// returns zero rows without any error signal otherwise.
type DateColumnStats struct {
	Column   string        `json:"column"`
	Min      string        `json:"min"`
	Max      string        `json:"max"`
	PerMonth []PeriodCount `json:"per_month,omitempty"`
}

// PeriodCount is one bucket of the per-period histogram (period formatted
// as YYYY-MM).
type PeriodCount struct {
	Period string `json:"period"`
	Rows   int64  `json:"rows"`
}

// Table returns the context for the named table, or nil if absent.
func (sc *SchemaContext) Table(name string) *TableContext {
	for i := range sc.Tables {
		if sc.Tables[i].Schema.Name == name {
			return &sc.Tables[i]
		}
	}
	return nil
}
