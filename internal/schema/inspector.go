package schema

import (
	"context"
	"fmt"
	"strings"

	"db2graph/internal/database"
	"db2graph/internal/dialect"
	"db2graph/internal/metadata"
)

// Inspector reads table and column metadata through a database.Client.
type Inspector struct {
	client  database.Client
	dialect dialect.Dialect
	schema  string
	tinyInt metadata.TinyIntResolver
}

// NewInspector inspects tables of schema. Unqualified table names are resolved against it.
func NewInspector(client database.Client, d dialect.Dialect, schema string, tinyInt metadata.TinyIntResolver) *Inspector {
	return &Inspector{
		client:  client,
		dialect: d,
		schema:  d.DefaultSchema(schema),
		tinyInt: tinyInt,
	}
}

func (i *Inspector) Schema() string { return i.schema }

func (i *Inspector) TableNames(ctx context.Context) ([]metadata.TableName, error) {
	return i.client.TableNames(ctx)
}

// Resolve maps a user supplied name onto a known table, ignoring case.
func (i *Inspector) Resolve(ctx context.Context, name metadata.TableName) (metadata.TableName, error) {
	known, err := i.client.TableNames(ctx)
	if err != nil {
		return metadata.TableName{}, err
	}
	return resolve(known, name.WithDefaultSchema(i.schema))
}

func resolve(known []metadata.TableName, name metadata.TableName) (metadata.TableName, error) {
	for _, k := range known {
		if k == name {
			return k, nil
		}
	}
	// Lookup using Normalized Key (Oracle keeps names upper case)
	for _, k := range known {
		if k.EqualFold(name) {
			return k, nil
		}
	}
	return metadata.TableName{}, fmt.Errorf("%w: table %s not found", metadata.ErrSchemaMismatch, name)
}

// Columns returns the columns of table in ordinal order with their roles classified. The
// primary key flag wins over a reference: a primary key shared with a parent table keeps
// the PrimaryKey role and still records what it references.
func (i *Inspector) Columns(ctx context.Context, table metadata.TableName) ([]metadata.Column, error) {
	known, err := i.client.TableNames(ctx)
	if err != nil {
		return nil, err
	}

	results, err := i.client.ExecuteQuery(ctx, i.dialect.ColumnsQuery(), table.Schema(), table.Simple()).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}

	seen := make(map[string]bool)
	var columns []metadata.Column
	for _, row := range results.Rows() {
		name, ok := row.Lookup("COLUMN_NAME")
		if !ok {
			continue // Skip invalid rows
		}
		// a column taking part in several foreign keys is reported once per constraint
		if seen[strings.ToUpper(name)] {
			continue
		}
		seen[strings.ToUpper(name)] = true

		sqlType := metadata.SQLDataType(i.dialect.NormalizeType(row.String("DATA_TYPE")))
		col := metadata.NewColumn(table, name, metadata.Data, sqlType, i.tinyInt.GraphType(sqlType))

		if refName, ok := row.Lookup("REFERENCED_TABLE_NAME"); ok && refName != "" {
			refSchema := row.String("REFERENCED_TABLE_SCHEMA")
			if refSchema == "" {
				refSchema = table.Schema()
			}
			ref, err := resolve(known, metadata.TableNameOf(refSchema, refName))
			if err != nil {
				return nil, fmt.Errorf("%w: column %s references unknown table %s.%s",
					metadata.ErrSchemaMismatch, col.Name, refSchema, refName)
			}
			col.Role = metadata.ForeignKey
			col.References = ref
			col.ReferencedColumn = row.String("REFERENCED_COLUMN_NAME")
		}
		if isPrimaryKey(row.String("COLUMN_KEY")) {
			col.Role = metadata.PrimaryKey
		}

		columns = append(columns, col)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns found for table %s", metadata.ErrSchemaMismatch, table)
	}
	return columns, nil
}

// Table inspects an endpoint table, which must have exactly one primary key column.
func (i *Inspector) Table(ctx context.Context, name metadata.TableName) (*metadata.Table, error) {
	columns, err := i.Columns(ctx, name)
	if err != nil {
		return nil, err
	}
	return metadata.NewTable(name, columns)
}

// PK Detection ("PRI" for MySQL/Postgres/Oracle/SQLite, "PRIMARY" for SQL Server)
func isPrimaryKey(columnKey string) bool {
	return strings.Contains(strings.ToUpper(columnKey), "PRI")
}
