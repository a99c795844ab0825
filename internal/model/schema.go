package model

// Schema represents the full introspection result for a database,
// including tables and views.
type Schema struct {
	Tables []TableSchema `json:"tables"`
}

// TableSchema describes the structure of a single table or view.
type TableSchema struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"` // "table" or "view"
	Columns     []Column     `json:"columns"`
	PrimaryKey  []string     `json:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Column describes a single column within a table or view.
type Column struct {
	Name         string  `json:"name"`
	Position     int     `json:"position"`
	Type         string  `json:"db_type"`
	GoType       string  `json:"go_type"`
	Nullable     bool    `json:"nullable"`
	Default      *string `json:"default,omitempty"`
	IsPrimaryKey bool    `json:"is_primary_key"`
}

// ForeignKey describes a foreign key constraint between two tables.
type ForeignKey struct {
	Name             string `json:"name"`
	ColumnName       string `json:"column_name"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// IsTextual reports whether the column holds free-form or categorical text.
// The introspection layer maps every database type to a Go type, so the
// classification is driver-independent.
func (c Column) IsTextual() bool { return c.GoType == "string" }

// IsTemporal reports whether the column holds a date or timestamp.
func (c Column) IsTemporal() bool { return c.GoType == "time.Time" }
