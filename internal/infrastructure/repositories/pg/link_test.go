package pg

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/sync/audit"
	"templatesync-pg-backend/internal/sync/linker"
)

const (
	linkTemplate = 10001
	linkHost     = 10100
)

// seedLinkData writes a template owning a graph and a host prototype, a host
// inheriting the template items, and an untemplated host graph named like the
// template graph
func seedLinkData(t *testing.T, registry *Registry) {
	t.Helper()
	ctx := context.Background()
	w, err := registry.Writer(ctx)
	require.NoError(t, err)

	hosts := w.PrepareBulkInsert(models.TblHosts, "hostid", "host", "name", "flags")
	hosts.AddRow(uint64(linkTemplate), "Template OS", "Template OS", models.HostFlagNormal)
	hosts.AddRow(uint64(linkHost), "web-1", "web-1", models.HostFlagNormal)
	hosts.AddRow(uint64(60001), "{#FSNAME}", "Volume {#FSNAME}", models.HostFlagPrototype)
	require.NoError(t, hosts.Execute(ctx))

	items := w.PrepareBulkInsert(models.TblItems, "itemid", "hostid", "key_", "templateid")
	items.AddRow(uint64(20001), uint64(linkTemplate), "system.cpu.util", nil)
	items.AddRow(uint64(20002), uint64(linkTemplate), "vfs.fs.discovery", nil)
	items.AddRow(uint64(30001), uint64(linkHost), "system.cpu.util", uint64(20001))
	items.AddRow(uint64(30002), uint64(linkHost), "vfs.fs.discovery", uint64(20002))
	require.NoError(t, items.Execute(ctx))

	discovery := w.PrepareBulkInsert(models.TblHostDiscovery, "hostid", "parent_itemid")
	discovery.AddRow(uint64(60001), uint64(20002))
	require.NoError(t, discovery.Execute(ctx))

	groups := w.PrepareBulkInsert(models.TblGroupPrototype, "group_prototypeid", "hostid", "name")
	groups.AddRow(uint64(80001), uint64(60001), "{#FSNAME} volumes")
	require.NoError(t, groups.Execute(ctx))

	macros := w.PrepareBulkInsert(models.TblHostMacro, "hostmacroid", "hostid", "macro", "value")
	macros.AddRow(uint64(90001), uint64(60001), "{$MOUNT}", "/")
	require.NoError(t, macros.Execute(ctx))

	graphs := w.PrepareBulkInsert(models.TblGraphs, "graphid", "name")
	graphs.AddRow(uint64(40001), "CPU")
	graphs.AddRow(uint64(40100), "CPU")
	require.NoError(t, graphs.Execute(ctx))

	series := w.PrepareBulkInsert(models.TblGraphsItems, "gitemid", "graphid", "itemid", "color")
	series.AddRow(uint64(50001), uint64(40001), uint64(20001), "1A7C11")
	series.AddRow(uint64(50100), uint64(40100), uint64(30001), "1A7C11")
	require.NoError(t, series.Execute(ctx))

	require.NoError(t, w.Commit())
}

func count(t *testing.T, conn *pgx.Conn, query string, args ...any) int {
	t.Helper()
	var n int64
	require.NoError(t, conn.QueryRow(context.Background(), query, args...).Scan(&n))
	return int(n)
}

func TestRegistry_LinkPassesAreIdempotent(t *testing.T) {
	registry, conn := setupTestDB(t)
	seedLinkData(t, registry)
	ctx := context.Background()

	rec := audit.NewRecorder()
	l := linker.New(registry, rec, linker.Options{Program: models.ProgramServer}, logr.Discard())
	req := linker.Request{HostID: linkHost, TemplateIDs: []uint64{linkTemplate}}

	result, err := l.Link(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created[models.AuditResourceGraph])
	assert.Equal(t, 1, result.Created[models.AuditResourceHostPrototype])
	assert.Len(t, rec.Filter(models.AuditAdd), 2)

	var hostGraph uint64
	require.NoError(t, conn.QueryRow(ctx, "select graphid from graphs where templateid=40001").Scan(&hostGraph))
	assert.NotEqual(t, uint64(40100), hostGraph)
	assert.Equal(t, 1, count(t, conn, "select count(*) from graphs_items where graphid=$1 and itemid=30001", hostGraph))

	// the untemplated graph is neither adopted nor rewritten
	assert.Equal(t, 1, count(t, conn, "select count(*) from graphs where graphid=40100 and templateid is null"))
	assert.Equal(t, 1, count(t, conn, "select count(*) from graphs_items where graphid=40100"))
	assert.Equal(t, 1, count(t, conn, "select count(*) from graphs_items where gitemid=50100 and itemid=30001 and color='1A7C11'"))

	var hostProto uint64
	require.NoError(t, conn.QueryRow(ctx, "select hostid from hosts where templateid=60001").Scan(&hostProto))
	assert.Equal(t, 1, count(t, conn, "select count(*) from host_discovery where hostid=$1 and parent_itemid=30002", hostProto))
	assert.Equal(t, 1, count(t, conn, "select count(*) from group_prototype where hostid=$1 and templateid=80001", hostProto))
	assert.Equal(t, 1, count(t, conn, "select count(*) from hostmacro where hostid=$1 and macro='{$MOUNT}'", hostProto))

	rec.Reset()
	again, err := l.Link(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty())
	assert.Empty(t, rec.Records())
	assert.Equal(t, 3, count(t, conn, "select count(*) from graphs"))
	assert.Equal(t, 4, count(t, conn, "select count(*) from hosts"))
	assert.Equal(t, 1, count(t, conn, "select count(*) from graphs where graphid=40100 and templateid is null"))
}
