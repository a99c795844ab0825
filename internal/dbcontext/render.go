package dbcontext

import (
	"fmt"
	"strings"

	"github.com/seeqdb/seeq/internal/model"
)

// Render produces the schema context text block. Section headers are fixed
// so that downstream prompts and the retrieval index can rely on them.
func Render(sc *model.SchemaContext) string {
	var b strings.Builder
	for i := range sc.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		renderTable(&b, &sc.Tables[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTable(b *strings.Builder, tc *model.TableContext) {
	fmt.Fprintf(b, "TABLE: %s\n", tc.Schema.Name)

	b.WriteString("COLUMNS:\n")
	for _, col := range tc.Schema.Columns {
		line := fmt.Sprintf("  - %s (%s", col.Name, col.Type)
		if !col.Nullable {
			line += ", not null"
		}
		if col.IsPrimaryKey {
			line += ", primary key"
		}
		line += ")"
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, fk := range tc.Schema.ForeignKeys {
		fmt.Fprintf(b, "  FOREIGN KEY: %s -> %s.%s\n", fk.ColumnName, fk.ReferencedTable, fk.ReferencedColumn)
	}

	fmt.Fprintf(b, "TOTAL ROWS: %d\n", tc.RowCount)

	if tc.Sample != nil && tc.Sample.RowCount() > 0 {
		fmt.Fprintf(b, "SAMPLE ROWS (%d of %d):\n", tc.Sample.RowCount(), tc.RowCount)
		for _, line := range strings.Split(tc.Sample.Render(0), "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	for _, cd := range tc.Distincts {
		if cd.HighCardinality {
			fmt.Fprintf(b, "DISTINCT VALUES for %s: %d distinct values (too many to list)\n", cd.Column, cd.Cardinality)
			continue
		}
		fmt.Fprintf(b, "DISTINCT VALUES for %s (%d): %s\n", cd.Column, cd.Cardinality, strings.Join(cd.Values, ", "))
	}

	for _, ds := range tc.Dates {
		fmt.Fprintf(b, "DATE RANGE for %s: %s to %s\n", ds.Column, ds.Min, ds.Max)
		if len(ds.PerMonth) > 0 {
			fmt.Fprintf(b, "ROWS PER MONTH for %s:\n", ds.Column)
			for _, pc := range ds.PerMonth {
				fmt.Fprintf(b, "  %s: %d rows\n", pc.Period, pc.Rows)
			}
		}
	}
}
