package writers

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

// PrepareBulkInsert starts a multi-row insert into table
func (w *Writer) PrepareBulkInsert(table models.TableID, columns ...string) ports.BulkInsert {
	return &bulkInsert{w: w, table: table, columns: columns}
}

type bulkInsert struct {
	w       *Writer
	table   models.TableID
	columns []string
	rows    [][]any
}

// AddRow appends one row; values follow the prepared column order
func (b *bulkInsert) AddRow(values ...any) {
	b.rows = append(b.rows, values)
}

// Rows returns the number of rows added so far
func (b *bulkInsert) Rows() int {
	return len(b.rows)
}

// Execute flushes buffered statements first so rows land after them, then
// loads the rows in chunks.
func (b *bulkInsert) Execute(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}
	if err := b.w.Flush(ctx); err != nil {
		return err
	}
	for _, row := range b.rows {
		if len(row) != len(b.columns) {
			return errors.Errorf("bulk insert into %s: %d values for %d columns", b.table, len(row), len(b.columns))
		}
	}

	klog.V(4).InfoS("Bulk insert", "table", b.table.String(), "rows", len(b.rows))
	for start := 0; start < len(b.rows); start += b.w.opts.BulkChunkRows {
		end := min(start+b.w.opts.BulkChunkRows, len(b.rows))
		n, err := b.w.tx.CopyRows(ctx, b.table.String(), b.columns, b.rows[start:end])
		if err != nil {
			return errors.Wrapf(err, "failed to insert into %s", b.table)
		}
		b.w.addAffectedRows(n)
	}
	b.rows = nil
	return nil
}
