package readers

import (
	"context"

	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore"
)

// Reader implements ports.Reader over SQL
// Methods are split across multiple files by object kind
type Reader struct {
	q       sqlstore.Querier
	d       dialect.Dialect
	release func() error
}

// NewReader creates a new SQL reader instance. release is called by Close
// and may be nil.
func NewReader(q sqlstore.Querier, d dialect.Dialect, release func() error) *Reader {
	return &Reader{
		q:       q,
		d:       d,
		release: release,
	}
}

// Close releases the underlying connection if the reader owns one
func (r *Reader) Close() error {
	if r.release == nil {
		return nil
	}
	return r.release()
}

// query executes a query through the transaction or pool the reader was built on
func (r *Reader) query(ctx context.Context, query string, args ...any) (sqlstore.Rows, error) {
	return r.q.Query(ctx, query, args...)
}

// args starts a parameter list in the reader's dialect
func (r *Reader) args() *dialect.Args {
	return dialect.NewArgs(r.d)
}

// selectIDs runs a single-column id query
func (r *Reader) selectIDs(ctx context.Context, query string, args ...any) ([]uint64, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
