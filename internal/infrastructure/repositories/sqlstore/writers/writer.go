package writers

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore"
)

// Options tune the batched write executor
type Options struct {
	// StatementBufferSize is the buffered SQL size in bytes that triggers a flush
	StatementBufferSize int
	// BulkChunkRows caps the rows sent by one bulk insert round-trip
	BulkChunkRows int
}

// DefaultOptions returns the defaults used when config leaves them unset
func DefaultOptions() Options {
	return Options{
		StatementBufferSize: 128 * 1024,
		BulkChunkRows:       1000,
	}
}

// argSize approximates the wire size of one bind parameter
const argSize = 16

// Writer implements ports.Writer over a driver transaction
// Methods are split across multiple files by concern
type Writer struct {
	tx           sqlstore.Tx
	d            dialect.Dialect
	ctx          context.Context
	opts         Options
	buf          []sqlstore.Query
	bufSize      int
	affectedRows *int64
	committed    bool
}

// NewWriter creates a new SQL writer instance
func NewWriter(ctx context.Context, tx sqlstore.Tx, d dialect.Dialect, opts Options) *Writer {
	def := DefaultOptions()
	if opts.StatementBufferSize <= 0 {
		opts.StatementBufferSize = def.StatementBufferSize
	}
	if opts.BulkChunkRows <= 0 {
		opts.BulkChunkRows = def.BulkChunkRows
	}
	affectedRows := int64(0)
	return &Writer{
		tx:           tx,
		d:            d,
		ctx:          ctx,
		opts:         opts,
		affectedRows: &affectedRows,
	}
}

// addAffectedRows atomically adds to the affected rows counter
func (w *Writer) addAffectedRows(count int64) {
	atomic.AddInt64(w.affectedRows, count)
}

// AffectedRows returns the rows touched by executed statements
func (w *Writer) AffectedRows() int64 {
	return atomic.LoadInt64(w.affectedRows)
}

// AppendStatement renders stmt and buffers it
func (w *Writer) AppendStatement(ctx context.Context, stmt ports.Statement) error {
	query, args, err := dialect.Render(w.d, stmt)
	if err != nil {
		return errors.Wrapf(err, "failed to render %s", stmt)
	}
	w.buf = append(w.buf, sqlstore.Query{SQL: query, Args: args})
	w.bufSize += len(query) + argSize*len(args)
	if w.bufSize > w.opts.StatementBufferSize {
		return w.Flush(ctx)
	}
	return nil
}

// Flush executes buffered statements in order
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	batch := w.buf
	w.buf, w.bufSize = nil, 0

	klog.V(4).InfoS("Flushing statement buffer", "statements", len(batch))
	n, err := w.tx.ExecBatch(ctx, batch)
	if err != nil {
		return errors.Wrap(err, "failed to execute statement batch")
	}
	w.addAffectedRows(n)
	return nil
}

// Commit flushes pending statements and commits the transaction
func (w *Writer) Commit() error {
	if w.committed {
		return errors.New("transaction already committed")
	}
	if err := w.Flush(w.ctx); err != nil {
		_ = w.tx.Rollback(w.ctx)
		return err
	}
	if err := w.tx.Commit(w.ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	klog.V(4).InfoS("Transaction committed", "affectedRows", w.AffectedRows())
	w.committed = true
	return nil
}

// Abort rolls back the transaction
func (w *Writer) Abort() {
	if !w.committed {
		w.buf, w.bufSize = nil, 0
		_ = w.tx.Rollback(w.ctx)
	}
}

// Tx returns the underlying transaction (used by ReaderFromWriter)
func (w *Writer) Tx() sqlstore.Tx {
	return w.tx
}

// Dialect returns the dialect statements are rendered in
func (w *Writer) Dialect() dialect.Dialect {
	return w.d
}
