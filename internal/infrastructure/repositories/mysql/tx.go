package mysql

import (
	"context"
	"database/sql"

	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore"
)

type rowsAdapter struct {
	*sql.Rows
}

func (r rowsAdapter) Close() {
	_ = r.Rows.Close()
}

// txAdapter exposes a database/sql transaction as sqlstore.Tx
type txAdapter struct {
	tx *sql.Tx
}

var _ sqlstore.Tx = txAdapter{}

func (t txAdapter) Query(ctx context.Context, query string, args ...any) (sqlstore.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{Rows: rows}, nil
}

func (t txAdapter) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecBatch runs the statements one by one; the driver has no pipelining
func (t txAdapter) ExecBatch(ctx context.Context, batch []sqlstore.Query) (int64, error) {
	var total int64
	for _, q := range batch {
		n, err := t.Exec(ctx, q.SQL, q.Args...)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// CopyRows sends one multi-row insert
func (t txAdapter) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	query, args := dialect.InsertStatement(dialect.MySQL{}, table, columns, rows)
	return t.Exec(ctx, query, args...)
}

func (t txAdapter) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t txAdapter) Rollback(context.Context) error {
	return t.tx.Rollback()
}

type dbQuerier struct {
	db *sql.DB
}

func (q dbQuerier) Query(ctx context.Context, query string, args ...any) (sqlstore.Rows, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{Rows: rows}, nil
}
