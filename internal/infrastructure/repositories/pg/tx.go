package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore"
)

// txAdapter exposes a pgx transaction as sqlstore.Tx
type txAdapter struct {
	tx pgx.Tx
}

var _ sqlstore.Tx = txAdapter{}

func (t txAdapter) Query(ctx context.Context, sql string, args ...any) (sqlstore.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t txAdapter) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExecBatch sends the statements in one pgx batch
func (t txAdapter) ExecBatch(ctx context.Context, batch []sqlstore.Query) (int64, error) {
	b := &pgx.Batch{}
	for _, q := range batch {
		b.Queue(q.SQL, q.Args...)
	}
	br := t.tx.SendBatch(ctx, b)

	var total int64
	for range batch {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return total, err
		}
		total += tag.RowsAffected()
	}
	return total, br.Close()
}

// CopyRows loads rows with the COPY protocol
func (t txAdapter) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return t.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

func (t txAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t txAdapter) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// poolQuerier runs reads on pooled connections outside any transaction
type poolQuerier struct {
	pool *pgxpool.Pool
}

func (p poolQuerier) Query(ctx context.Context, sql string, args ...any) (sqlstore.Rows, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
