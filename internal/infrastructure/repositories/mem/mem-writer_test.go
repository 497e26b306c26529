package mem

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

func seedHost(t *testing.T, r *Registry) {
	t.Helper()
	require.NoError(t, r.DB().Seed(models.TblHosts, Row{"hostid": uint64(1), "host": "web", "name": "web"}))
}

func TestWriter_CommitPublishes(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(writers.DefaultOptions())
	defer r.Close()
	seedHost(t, r)

	w, err := r.Writer(ctx)
	require.NoError(t, err)

	first, err := w.ReserveIDs(ctx, models.TblHostTag, 2)
	require.NoError(t, err)
	bulk := w.PrepareBulkInsert(models.TblHostTag, "hosttagid", "hostid", "tag", "value")
	bulk.AddRow(first, uint64(1), "env", "prod")
	bulk.AddRow(first+1, uint64(1), "role", "web")
	require.NoError(t, bulk.Execute(ctx))
	require.NoError(t, w.AppendStatement(ctx, ports.UpdateStatement{
		TableID:   models.TblHosts,
		Set:       []ports.Assignment{{Column: "name", Value: "web-1"}},
		KeyColumn: "hostid",
		Key:       1,
	}))

	txReader, err := r.ReaderFromWriter(ctx, w)
	require.NoError(t, err)
	flags, err := txReader.GetHostFlags(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.HostFlagNormal, flags)

	assert.Len(t, r.DB().Rows(models.TblHostTag), 0, "uncommitted rows are private")
	require.NoError(t, w.Commit())

	tags := r.DB().Rows(models.TblHostTag)
	require.Len(t, tags, 2)
	assert.Equal(t, "env", tags[0].Str("tag"))
	assert.Equal(t, "web-1", r.DB().Rows(models.TblHosts)[0].Str("name"))

	journal := w.(*Writer).Journal()
	assert.Equal(t, 2, journal.Writes())
	assert.Equal(t, 1, journal.Reservations)
	assert.Equal(t, int64(3), w.AffectedRows())
}

func TestWriter_AbortDiscards(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(writers.DefaultOptions())
	seedHost(t, r)

	w, err := r.Writer(ctx)
	require.NoError(t, err)
	require.NoError(t, w.AppendStatement(ctx, ports.DeleteStatement{TableID: models.TblHosts, KeyColumn: "hostid", Keys: []uint64{1}}))
	require.NoError(t, w.Flush(ctx))
	w.Abort()

	assert.Len(t, r.DB().Rows(models.TblHosts), 1)
	assert.Error(t, w.Commit())
}

func TestWriter_BufferFlushesOverThreshold(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(writers.Options{StatementBufferSize: 10})
	seedHost(t, r)

	w, err := r.Writer(ctx)
	require.NoError(t, err)
	require.NoError(t, w.AppendStatement(ctx, ports.UpdateStatement{
		TableID:   models.TblHosts,
		Set:       []ports.Assignment{{Column: "status", Value: 1}},
		KeyColumn: "hostid",
		Key:       1,
	}))
	assert.Len(t, w.(*Writer).Journal().Statements, 1, "statement longer than the threshold flushes at once")
}

func TestWriter_FailWrites(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(writers.DefaultOptions())
	seedHost(t, r)
	boom := errors.New("boom")
	r.FailWrites(models.TblHostTag, boom)

	w, err := r.Writer(ctx)
	require.NoError(t, err)
	bulk := w.PrepareBulkInsert(models.TblHostTag, "hosttagid", "hostid", "tag")
	bulk.AddRow(uint64(1), uint64(1), "a")
	assert.ErrorIs(t, bulk.Execute(ctx), boom)
}

func TestRegistry_Closed(t *testing.T) {
	r := NewRegistry(writers.DefaultOptions())
	require.NoError(t, r.Close())

	_, err := r.Writer(context.Background())
	assert.Error(t, err)
	_, err = r.Reader(context.Background())
	assert.Error(t, err)
}
