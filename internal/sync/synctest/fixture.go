// Package synctest seeds the in-memory registry for synchronizer tests
package synctest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/mem"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
	"templatesync-pg-backend/internal/sync/audit"
)

// Row is a seeded row
type Row = mem.Row

// Fixture is an in-memory database with an audit recorder
type Fixture struct {
	T        *testing.T
	Registry *mem.Registry
	Audit    *audit.Recorder
}

// New creates an empty fixture
func New(t *testing.T) *Fixture {
	t.Helper()
	r := mem.NewRegistry(writers.DefaultOptions())
	t.Cleanup(func() { _ = r.Close() })
	return &Fixture{T: t, Registry: r, Audit: audit.NewRecorder()}
}

// Seed inserts committed rows
func (f *Fixture) Seed(table models.TableID, rows ...Row) *Fixture {
	f.T.Helper()
	require.NoError(f.T, f.Registry.DB().Seed(table, rows...))
	return f
}

// Host seeds a host or template
func (f *Fixture) Host(id uint64, host string) *Fixture {
	return f.Seed(models.TblHosts, Row{"hostid": id, "host": host, "name": host})
}

// Item seeds an item; templateID links it to a template item when non-zero
func (f *Fixture) Item(id, hostID uint64, key string, templateID uint64) *Fixture {
	return f.Seed(models.TblItems, Row{
		"itemid":     id,
		"hostid":     hostID,
		"key_":       key,
		"templateid": models.NullableID(templateID),
	})
}

// Graph seeds a graph and its series; series rows get the graph id
func (f *Fixture) Graph(graph Row, series ...Row) *Fixture {
	f.Seed(models.TblGraphs, graph)
	for _, s := range series {
		s["graphid"] = graph["graphid"]
		f.Seed(models.TblGraphsItems, s)
	}
	return f
}

// Rows returns committed rows of a table ordered by key
func (f *Fixture) Rows(table models.TableID) []Row {
	return f.Registry.DB().Rows(table)
}

// Find returns the committed row whose column equals v
func (f *Fixture) Find(table models.TableID, column string, v uint64) Row {
	f.T.Helper()
	for _, r := range f.Rows(table) {
		if r.ID(column) == v {
			return r
		}
	}
	f.T.Fatalf("no %s row with %s=%d", table, column, v)
	return nil
}

// Pass runs fn inside one writer transaction, committing on success, and
// returns what the transaction executed. The audit recorder is reset first.
func (f *Fixture) Pass(fn func(ctx context.Context, reader ports.Reader, writer ports.Writer) error) (mem.Journal, error) {
	f.T.Helper()
	ctx := context.Background()
	f.Audit.Reset()

	w, err := f.Registry.Writer(ctx)
	require.NoError(f.T, err)
	reader, err := f.Registry.ReaderFromWriter(ctx, w)
	require.NoError(f.T, err)
	defer reader.Close()

	if err := fn(ctx, reader, w); err != nil {
		w.Abort()
		return w.(*mem.Writer).Journal(), err
	}
	require.NoError(f.T, w.Commit())
	return w.(*mem.Writer).Journal(), nil
}
