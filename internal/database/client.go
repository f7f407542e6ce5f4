// Package database is the source database access used by schema inspection: a Client
// returning table names and running queries asynchronously, with string typed results.
package database

import (
	"context"

	"db2graph/internal/metadata"
)

// Client is the view of the source database the inspector and detector depend on.
type Client interface {
	TableNames(ctx context.Context) ([]metadata.TableName, error)
	ExecuteQuery(ctx context.Context, query string, args ...any) *AwaitHandle[QueryResults]
}
