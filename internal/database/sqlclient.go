package database

import (
	"context"
	"database/sql"
	"fmt"

	"db2graph/internal/dialect"
	"db2graph/internal/logger"
	"db2graph/internal/metadata"
)

// SQLClient implements Client over database/sql for one schema.
type SQLClient struct {
	db      *sql.DB
	dialect dialect.Dialect
	schema  string
}

func NewSQLClient(db *sql.DB, d dialect.Dialect, schema string) *SQLClient {
	return &SQLClient{db: db, dialect: d, schema: d.DefaultSchema(schema)}
}

func (c *SQLClient) Schema() string { return c.schema }

func (c *SQLClient) Dialect() dialect.Dialect { return c.dialect }

func (c *SQLClient) TableNames(ctx context.Context) ([]metadata.TableName, error) {
	results, err := c.ExecuteQuery(ctx, c.dialect.TablesQuery(), c.schema).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	names := make([]metadata.TableName, 0, results.Len())
	for _, row := range results.Rows() {
		name, ok := row.Lookup("TABLE_NAME")
		if !ok {
			continue
		}
		names = append(names, metadata.TableNameOf(c.schema, name))
	}
	return names, nil
}

func (c *SQLClient) ExecuteQuery(ctx context.Context, query string, args ...any) *AwaitHandle[QueryResults] {
	return Go(func() (QueryResults, error) {
		return c.query(ctx, query, args...)
	})
}

func (c *SQLClient) query(ctx context.Context, query string, args ...any) (QueryResults, error) {
	logger.Debugf("query %v: %s", args, query)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return QueryResults{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return QueryResults{}, fmt.Errorf("failed to read result columns: %w", err)
	}

	var cells [][]sql.NullString
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return QueryResults{}, fmt.Errorf("failed to scan row: %w", err)
		}
		cells = append(cells, values)
	}
	if err := rows.Err(); err != nil {
		return QueryResults{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return NewQueryResults(columns, cells)
}
