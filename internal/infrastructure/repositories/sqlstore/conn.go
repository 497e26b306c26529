// Package sqlstore holds the SQL readers and writers shared by the postgres
// and mysql registries. Drivers plug in through Querier and Tx.
package sqlstore

import "context"

// Rows is a forward-only result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier runs read queries
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Query is one rendered statement with its bind parameters
type Query struct {
	SQL  string
	Args []any
}

// Tx is a driver transaction
type Tx interface {
	Querier

	// Exec runs one statement and returns the number of affected rows
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// ExecBatch runs statements in order in as few round-trips as the driver allows
	ExecBatch(ctx context.Context, batch []Query) (int64, error)

	// CopyRows bulk loads rows into table
	CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
