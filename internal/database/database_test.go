package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"db2graph/internal/database"
	"db2graph/internal/dialect"
	"db2graph/internal/metadata"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitHandle(t *testing.T) {
	ctx := context.Background()

	v, err := database.Resolved(42).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	_, err = database.Failed[int](boom).Await(ctx)
	assert.Same(t, boom, err)

	h := database.Go(func() (string, error) { return "done", nil })
	v2, err := h.AwaitTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "done", v2)
}

func TestAwaitHandle_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	h := database.Go(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResults(t *testing.T) {
	results := database.Results("COLUMN_NAME", "referenced_table_name").
		Row("id", nil).
		Row("addressId", "Address").
		Build()

	require.Equal(t, 2, results.Len())
	first, second := results.Rows()[0], results.Rows()[1]

	assert.Equal(t, "id", first.String("column_name"))
	assert.True(t, first.IsNull("REFERENCED_TABLE_NAME"))
	ref, ok := second.Lookup("REFERENCED_TABLE_NAME")
	assert.True(t, ok)
	assert.Equal(t, "Address", ref)
	assert.True(t, second.IsNull("MISSING"))

	assert.Panics(t, func() { database.Results("A", "B").Row("only one").Build() })
}

func setupClient(t *testing.T) (*database.SQLClient, sqlmock.Sqlmock, dialect.Dialect) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := dialect.GetDialect("mysql")
	return database.NewSQLClient(db, d, "test"), mock, d
}

func TestSQLClient_TableNames(t *testing.T) {
	client, mock, d := setupClient(t)

	mock.ExpectQuery(d.TablesQuery()).
		WithArgs("test").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("Address").AddRow("Person"))

	names, err := client.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []metadata.TableName{
		metadata.NewTableName("test.Address"),
		metadata.NewTableName("test.Person"),
	}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLClient_ExecuteQuery(t *testing.T) {
	client, mock, d := setupClient(t)

	mock.ExpectQuery(d.ColumnsQuery()).
		WithArgs("test", "Person").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "COLUMN_KEY", "REFERENCED_TABLE_NAME"}).
			AddRow("id", "int", "PRI", nil).
			AddRow("addressId", "int", "MUL", "Address"))

	results, err := client.ExecuteQuery(context.Background(), d.ColumnsQuery(), "test", "Person").Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, results.Len())
	assert.Equal(t, "PRI", results.Rows()[0].String("COLUMN_KEY"))
	assert.True(t, results.Rows()[0].IsNull("REFERENCED_TABLE_NAME"))
	assert.Equal(t, "Address", results.Rows()[1].String("REFERENCED_TABLE_NAME"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLClient_QueryError(t *testing.T) {
	client, mock, d := setupClient(t)

	mock.ExpectQuery(d.TablesQuery()).WithArgs("test").WillReturnError(errors.New("access denied"))

	_, err := client.TableNames(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query tables")
	assert.Contains(t, err.Error(), "access denied")
}
