package writers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore"
)

type fakeRows struct {
	rows [][]uint64
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		*(d.(*uint64)) = r.rows[r.pos-1][i]
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

// fakeTx records every call in order
type fakeTx struct {
	calls    []string
	batches  [][]sqlstore.Query
	copies   [][][]any
	nextID   map[string]uint64
	maxIDs   uint64
	commited bool
}

func (t *fakeTx) Query(_ context.Context, sql string, _ ...any) (sqlstore.Rows, error) {
	t.calls = append(t.calls, sql)
	if sql == "select coalesce(max(graphid),0) from graphs" {
		return &fakeRows{rows: [][]uint64{{t.maxIDs}}}, nil
	}
	if next, ok := t.nextID["graphs"]; ok {
		return &fakeRows{rows: [][]uint64{{next}}}, nil
	}
	return &fakeRows{}, nil
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (int64, error) {
	t.calls = append(t.calls, sql)
	return 1, nil
}

func (t *fakeTx) ExecBatch(_ context.Context, batch []sqlstore.Query) (int64, error) {
	t.calls = append(t.calls, "batch")
	t.batches = append(t.batches, batch)
	return int64(len(batch)), nil
}

func (t *fakeTx) CopyRows(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	t.calls = append(t.calls, "copy "+table)
	t.copies = append(t.copies, rows)
	return int64(len(rows)), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.commited = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

func update(id uint64) ports.Statement {
	return ports.UpdateStatement{
		TableID:   models.TblGraphs,
		Set:       []ports.Assignment{{Column: "name", Value: "CPU"}},
		KeyColumn: "graphid",
		Key:       id,
	}
}

func TestWriter_AppendStatement_FlushesOverThreshold(t *testing.T) {
	ctx := context.Background()
	tx := &fakeTx{}
	w := NewWriter(ctx, tx, dialect.Postgres{}, Options{StatementBufferSize: 100})

	require.NoError(t, w.AppendStatement(ctx, update(1)))
	assert.Empty(t, tx.batches, "first statement stays buffered")

	require.NoError(t, w.AppendStatement(ctx, update(2)))
	require.Len(t, tx.batches, 1)
	assert.Len(t, tx.batches[0], 2)
	assert.Equal(t, "update graphs set name=$1 where graphid=$2", tx.batches[0][0].SQL)
	assert.Equal(t, []any{"CPU", uint64(2)}, tx.batches[0][1].Args)

	require.NoError(t, w.Flush(ctx))
	assert.Len(t, tx.batches, 1, "empty buffer flushes nothing")
	assert.Equal(t, int64(2), w.AffectedRows())
}

func TestWriter_AppendStatement_RenderError(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(ctx, &fakeTx{}, dialect.Postgres{}, DefaultOptions())

	err := w.AppendStatement(ctx, ports.DeleteStatement{TableID: models.TblGraphs, KeyColumn: "graphid"})
	assert.Error(t, err)
}

func TestWriter_BulkInsert_FlushesBufferFirstAndChunks(t *testing.T) {
	ctx := context.Background()
	tx := &fakeTx{}
	w := NewWriter(ctx, tx, dialect.Postgres{}, Options{BulkChunkRows: 2})

	require.NoError(t, w.AppendStatement(ctx, update(1)))
	bulk := w.PrepareBulkInsert(models.TblGraphsItems, "gitemid", "graphid")
	for i := uint64(1); i <= 5; i++ {
		bulk.AddRow(i, uint64(10))
	}
	assert.Equal(t, 5, bulk.Rows())

	require.NoError(t, bulk.Execute(ctx))
	assert.Equal(t, []string{"batch", "copy graphs_items", "copy graphs_items", "copy graphs_items"}, tx.calls)
	assert.Len(t, tx.copies[2], 1)
	assert.Equal(t, int64(6), w.AffectedRows())
}

func TestWriter_BulkInsert_ColumnMismatch(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(ctx, &fakeTx{}, dialect.Postgres{}, DefaultOptions())

	bulk := w.PrepareBulkInsert(models.TblGraphs, "graphid", "name")
	bulk.AddRow(uint64(1))
	assert.Error(t, bulk.Execute(ctx))
}

func TestWriter_ReserveIDs_SeedsFromMax(t *testing.T) {
	ctx := context.Background()
	tx := &fakeTx{maxIDs: 41}
	w := NewWriter(ctx, tx, dialect.Postgres{}, DefaultOptions())

	first, err := w.ReserveIDs(ctx, models.TblGraphs, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), first)
	assert.Equal(t, []string{
		"select nextid from ids where table_name=$1 and field_name=$2 for update",
		"select coalesce(max(graphid),0) from graphs",
		"insert into ids (table_name,field_name,nextid) values ($1,$2,$3)",
		"update ids set nextid=$1 where table_name=$2 and field_name=$3",
	}, tx.calls)
}

func TestWriter_ReserveIDs_ExistingRow(t *testing.T) {
	ctx := context.Background()
	tx := &fakeTx{nextID: map[string]uint64{"graphs": 100}}
	w := NewWriter(ctx, tx, dialect.MySQL{}, DefaultOptions())

	first, err := w.ReserveIDs(ctx, models.TblGraphs, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), first)
	assert.Len(t, tx.calls, 2)
	assert.Equal(t, "update ids set nextid=? where table_name=? and field_name=?", tx.calls[1])
}

func TestWriter_ReserveIDs_Invalid(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(ctx, &fakeTx{}, dialect.Postgres{}, DefaultOptions())

	_, err := w.ReserveIDs(ctx, models.TblGraphs, 0)
	assert.Error(t, err)
	_, err = w.ReserveIDs(ctx, models.TblHostInventory, 1)
	assert.Error(t, err)
}

func TestWriter_Commit_FlushesPending(t *testing.T) {
	ctx := context.Background()
	tx := &fakeTx{}
	w := NewWriter(ctx, tx, dialect.Postgres{}, DefaultOptions())

	require.NoError(t, w.AppendStatement(ctx, update(7)))
	require.NoError(t, w.Commit())
	assert.True(t, tx.commited)
	assert.Len(t, tx.batches, 1)
	assert.Error(t, w.Commit())
}
