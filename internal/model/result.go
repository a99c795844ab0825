package model

import (
	"fmt"
	"strings"
	"time"
)

// ResultSet holds the rows returned by one executed query. Column order is
// preserved from the database cursor.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// RowCount returns the number of rows in the result.
func (rs *ResultSet) RowCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// RowMaps converts the result into one map per row, keyed by column name.
// Used by the HTTP layer for the JSON resource envelope.
func (rs *ResultSet) RowMaps() []map[string]any {
	out := make([]map[string]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		m := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// Render produces a compact pipe-separated text table of the result,
// suitable for inclusion in a model prompt. At most maxRows rows are
// printed; when the result is larger only a summary line follows the
// truncated rows.
func (rs *ResultSet) Render(maxRows int) string {
	if rs == nil || len(rs.Rows) == 0 {
		return "EMPTY RESULT (0 rows returned)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "rows: %d, columns: %s\n", len(rs.Rows), strings.Join(rs.Columns, ", "))
	b.WriteString(strings.Join(rs.Columns, " | "))
	b.WriteByte('\n')

	n := len(rs.Rows)
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}
	for _, row := range rs.Rows[:n] {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	if n < len(rs.Rows) {
		fmt.Fprintf(&b, "... (%d more rows omitted)\n", len(rs.Rows)-n)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatValue renders a single database value as text. Byte slices are
// shown as strings and timestamps in a date-friendly layout; NULL renders
// as the literal "NULL".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
