package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/seeqdb/seeq/internal/model"
)

// columnRow holds the result of querying information_schema.columns.
type columnRow struct {
	TableName  string  `db:"table_name"`
	ColumnName string  `db:"column_name"`
	DataType   string  `db:"data_type"`
	IsNullable string  `db:"is_nullable"`
	Default    *string `db:"column_default"`
	Position   int     `db:"ordinal_position"`
	UDTName    string  `db:"udt_name"`
}

// tableRow holds the result of querying information_schema.tables.
type tableRow struct {
	TableName string `db:"table_name"`
	TableType string `db:"table_type"`
}

// pkRow holds a primary key column mapping.
type pkRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
}

// fkRow holds a foreign key relationship.
type fkRow struct {
	TableName        string `db:"table_name"`
	ColumnName       string `db:"column_name"`
	ReferencedTable  string `db:"referenced_table"`
	ReferencedColumn string `db:"referenced_column"`
}

// IntrospectSchema returns the structure of every table and view in the
// configured schema.
func (c *PostgresConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	tables, err := c.fetchTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}

	columns, err := c.fetchColumns(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}

	pks, err := c.fetchPrimaryKeys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("introspect primary keys: %w", err)
	}

	fks, err := c.fetchForeignKeys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}

	pkMap := make(map[string]map[string]bool)
	pkColMap := make(map[string][]string)
	for _, pk := range pks {
		if pkMap[pk.TableName] == nil {
			pkMap[pk.TableName] = make(map[string]bool)
		}
		pkMap[pk.TableName][pk.ColumnName] = true
		pkColMap[pk.TableName] = append(pkColMap[pk.TableName], pk.ColumnName)
	}

	fkMap := make(map[string][]model.ForeignKey)
	for _, fk := range fks {
		fkMap[fk.TableName] = append(fkMap[fk.TableName], model.ForeignKey{
			Name:             fmt.Sprintf("fk_%s_%s", fk.TableName, fk.ColumnName),
			ColumnName:       fk.ColumnName,
			ReferencedTable:  fk.ReferencedTable,
			ReferencedColumn: fk.ReferencedColumn,
		})
	}

	colMap := make(map[string][]model.Column)
	for _, col := range columns {
		isPK := pkMap[col.TableName] != nil && pkMap[col.TableName][col.ColumnName]
		colMap[col.TableName] = append(colMap[col.TableName], model.Column{
			Name:         col.ColumnName,
			Position:     col.Position,
			Type:         col.UDTName,
			GoType:       mapPostgresType(col.UDTName, col.DataType),
			Nullable:     col.IsNullable == "YES",
			Default:      col.Default,
			IsPrimaryKey: isPK,
		})
	}

	schema := &model.Schema{Tables: []model.TableSchema{}}
	for _, t := range tables {
		ts := model.TableSchema{
			Name:        t.TableName,
			Type:        "table",
			Columns:     colMap[t.TableName],
			PrimaryKey:  pkColMap[t.TableName],
			ForeignKeys: fkMap[t.TableName],
		}
		if t.TableType == "VIEW" {
			ts.Type = "view"
		}
		if ts.Columns == nil {
			ts.Columns = []model.Column{}
		}
		if ts.PrimaryKey == nil {
			ts.PrimaryKey = []string{}
		}
		if ts.ForeignKeys == nil {
			ts.ForeignKeys = []model.ForeignKey{}
		}
		schema.Tables = append(schema.Tables, ts)
	}

	return schema, nil
}

// IntrospectTable returns the schema for a single table or view.
func (c *PostgresConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	const tableQuery = `SELECT table_name, table_type FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2`

	var t tableRow
	if err := c.db.GetContext(ctx, &t, tableQuery, c.schemaName, tableName); err != nil {
		return nil, fmt.Errorf("table %q not found in schema %q: %w", tableName, c.schemaName, err)
	}

	columns, err := c.fetchColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("introspect columns for %q: %w", tableName, err)
	}

	pks, err := c.fetchPrimaryKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("introspect primary keys for %q: %w", tableName, err)
	}
	pkSet := make(map[string]bool, len(pks))
	pkCols := make([]string, 0, len(pks))
	for _, pk := range pks {
		pkSet[pk.ColumnName] = true
		pkCols = append(pkCols, pk.ColumnName)
	}

	fks, err := c.fetchForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("introspect foreign keys for %q: %w", tableName, err)
	}
	foreignKeys := make([]model.ForeignKey, 0, len(fks))
	for _, fk := range fks {
		foreignKeys = append(foreignKeys, model.ForeignKey{
			Name:             fmt.Sprintf("fk_%s_%s", fk.TableName, fk.ColumnName),
			ColumnName:       fk.ColumnName,
			ReferencedTable:  fk.ReferencedTable,
			ReferencedColumn: fk.ReferencedColumn,
		})
	}

	modelColumns := make([]model.Column, 0, len(columns))
	for _, col := range columns {
		modelColumns = append(modelColumns, model.Column{
			Name:         col.ColumnName,
			Position:     col.Position,
			Type:         col.UDTName,
			GoType:       mapPostgresType(col.UDTName, col.DataType),
			Nullable:     col.IsNullable == "YES",
			Default:      col.Default,
			IsPrimaryKey: pkSet[col.ColumnName],
		})
	}

	tableType := "table"
	if t.TableType == "VIEW" {
		tableType = "view"
	}

	return &model.TableSchema{
		Name:        tableName,
		Type:        tableType,
		Columns:     modelColumns,
		PrimaryKey:  pkCols,
		ForeignKeys: foreignKeys,
	}, nil
}

// GetTableNames returns a list of all table names in the configured schema.
func (c *PostgresConnector) GetTableNames(ctx context.Context) ([]string, error) {
	const query = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

// --- internal fetch helpers ---

func (c *PostgresConnector) fetchTables(ctx context.Context) ([]tableRow, error) {
	const query = `SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name`

	var rows []tableRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *PostgresConnector) fetchColumns(ctx context.Context, tableName string) ([]columnRow, error) {
	query := `SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.ordinal_position,
			c.udt_name
		FROM information_schema.columns c
		WHERE c.table_schema = $1`

	args := []interface{}{c.schemaName}
	if tableName != "" {
		query += ` AND c.table_name = $2`
		args = append(args, tableName)
	}
	query += ` ORDER BY c.table_name, c.ordinal_position`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *PostgresConnector) fetchPrimaryKeys(ctx context.Context, tableName string) ([]pkRow, error) {
	query := `SELECT kcu.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1`

	args := []interface{}{c.schemaName}
	if tableName != "" {
		query += ` AND tc.table_name = $2`
		args = append(args, tableName)
	}

	var rows []pkRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *PostgresConnector) fetchForeignKeys(ctx context.Context, tableName string) ([]fkRow, error) {
	query := `SELECT
			tc.table_name,
			kcu.column_name,
			ccu.table_name AS referenced_table,
			ccu.column_name AS referenced_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1`

	args := []interface{}{c.schemaName}
	if tableName != "" {
		query += ` AND tc.table_name = $2`
		args = append(args, tableName)
	}

	var rows []fkRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// mapPostgresType maps a PostgreSQL UDT name and data_type to a Go type
// string. The context builder classifies columns off this mapping, so it
// only needs to be faithful for text and date/time families.
func mapPostgresType(udtName, dataType string) string {
	switch strings.ToLower(udtName) {
	case "int2", "smallint", "int4", "integer", "serial":
		return "int32"
	case "int8", "bigint", "bigserial":
		return "int64"
	case "float4", "real":
		return "float32"
	case "float8", "double precision", "numeric", "decimal":
		return "float64"
	case "varchar", "character varying", "char", "character", "text", "name", "citext":
		return "string"
	case "bool", "boolean":
		return "bool"
	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone", "date":
		return "time.Time"
	case "time", "timetz", "time without time zone", "time with time zone":
		return "string"
	case "uuid":
		return "string"
	case "json", "jsonb":
		return "interface{}"
	case "bytea":
		return "[]byte"
	case "inet", "cidr", "macaddr", "interval", "xml", "money":
		return "string"
	default:
		lower := strings.ToLower(dataType)
		if lower == "array" {
			return "interface{}"
		}
		if lower == "user-defined" {
			return "string"
		}
		return "interface{}"
	}
}
