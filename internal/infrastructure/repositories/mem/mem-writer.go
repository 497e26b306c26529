package mem

import (
	"context"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

// BulkRecord is one executed bulk insert
type BulkRecord struct {
	Table   models.TableID
	Columns []string
	Rows    [][]any
}

// Journal lists what a writer executed, in order of execution
type Journal struct {
	Statements   []ports.Statement
	Inserts      []BulkRecord
	Reservations int
}

// Writes is the number of executed statements and bulk inserts
func (j Journal) Writes() int {
	return len(j.Statements) + len(j.Inserts)
}

// Updates returns executed updates of a table
func (j Journal) Updates(tid models.TableID) []ports.UpdateStatement {
	var out []ports.UpdateStatement
	for _, s := range j.Statements {
		if u, ok := s.(ports.UpdateStatement); ok && u.TableID == tid {
			out = append(out, u)
		}
	}
	return out
}

// Deletes returns executed deletes of a table
func (j Journal) Deletes(tid models.TableID) []ports.DeleteStatement {
	var out []ports.DeleteStatement
	for _, s := range j.Statements {
		if d, ok := s.(ports.DeleteStatement); ok && d.TableID == tid {
			out = append(out, d)
		}
	}
	return out
}

// Writer is the in-memory transaction. Writes go to a private copy of the
// database published on Commit.
type Writer struct {
	registry *Registry
	ctx      context.Context
	snap     *snapshot
	buf      []ports.Statement
	bufSize  int
	affected int64
	journal  Journal
	done     bool
}

var _ ports.Writer = (*Writer)(nil)

// Journal returns what the writer executed so far
func (w *Writer) Journal() Journal {
	return w.journal
}

// AffectedRows returns rows touched by executed statements
func (w *Writer) AffectedRows() int64 {
	return w.affected
}

// AppendStatement buffers stmt and flushes once the buffer outgrows its threshold
func (w *Writer) AppendStatement(ctx context.Context, stmt ports.Statement) error {
	if w.done {
		return errors.New("transaction is closed")
	}
	w.buf = append(w.buf, stmt)
	w.bufSize += len(stmt.String())
	if w.bufSize > w.registry.opts.StatementBufferSize {
		return w.Flush(ctx)
	}
	return nil
}

// Flush executes buffered statements in order
func (w *Writer) Flush(_ context.Context) error {
	batch := w.buf
	w.buf, w.bufSize = nil, 0
	for _, stmt := range batch {
		if err := w.registry.injected(stmt.Table()); err != nil {
			return err
		}
		var (
			n   int64
			err error
		)
		switch s := stmt.(type) {
		case ports.UpdateStatement:
			n, err = w.snap.update(s)
		case ports.DeleteStatement:
			n, err = w.snap.delete(s.TableID, s.KeyColumn, s.Keys)
		default:
			err = errors.Errorf("unsupported statement %T", stmt)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to execute %s", stmt)
		}
		w.affected += n
		w.journal.Statements = append(w.journal.Statements, stmt)
	}
	return nil
}

// PrepareBulkInsert starts a multi-row insert
func (w *Writer) PrepareBulkInsert(table models.TableID, columns ...string) ports.BulkInsert {
	return &bulkInsert{w: w, table: table, columns: columns}
}

// ReserveIDs hands out a contiguous id block
func (w *Writer) ReserveIDs(_ context.Context, table models.TableID, count int) (uint64, error) {
	first, err := w.snap.reserve(table, count)
	if err != nil {
		return 0, err
	}
	w.journal.Reservations++
	return first, nil
}

// Commit flushes and publishes the writer's copy
func (w *Writer) Commit() error {
	if w.done {
		return errors.New("transaction already committed")
	}
	if err := w.Flush(w.ctx); err != nil {
		w.Abort()
		return err
	}
	w.registry.db.commit(w.snap)
	w.done = true
	return nil
}

// Abort discards the writer's copy
func (w *Writer) Abort() {
	w.buf = nil
	w.done = true
}

type bulkInsert struct {
	w       *Writer
	table   models.TableID
	columns []string
	rows    [][]any
}

func (b *bulkInsert) AddRow(values ...any) {
	b.rows = append(b.rows, values)
}

func (b *bulkInsert) Rows() int {
	return len(b.rows)
}

// Execute flushes buffered statements first, then inserts every row
func (b *bulkInsert) Execute(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}
	if err := b.w.Flush(ctx); err != nil {
		return err
	}
	if err := b.w.registry.injected(b.table); err != nil {
		return err
	}
	for _, values := range b.rows {
		if len(values) != len(b.columns) {
			return errors.Errorf("bulk insert into %s: %d values for %d columns", b.table, len(values), len(b.columns))
		}
		row := make(Row, len(values))
		for i, c := range b.columns {
			row[c] = values[i]
		}
		if err := b.w.snap.insert(b.table, row, true); err != nil {
			return errors.Wrapf(err, "failed to insert into %s", b.table)
		}
	}
	b.w.affected += int64(len(b.rows))
	b.w.journal.Inserts = append(b.w.journal.Inserts, BulkRecord{Table: b.table, Columns: b.columns, Rows: b.rows})
	b.rows = nil
	return nil
}
