package templatesync

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/config"
	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/factory"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
	"templatesync-pg-backend/internal/sync/synctest"
	"templatesync-pg-backend/internal/sync/types"
)

func execute(t *testing.T, opts Options, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewCommand(context.Background(), &out, &errOut, opts)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useFixture(f *synctest.Fixture) Options {
	return Options{OpenRegistry: func(context.Context, config.Database, writers.Options) (factory.Registry, error) {
		return f.Registry, nil
	}}
}

func graphFixture(t *testing.T) *synctest.Fixture {
	f := synctest.New(t)
	f.Host(10001, "Template OS").Host(10100, "web-1")
	f.Item(20001, 10001, "system.cpu.util", 0).Item(30001, 10100, "system.cpu.util", 20001)
	f.Graph(synctest.Row{"graphid": 40001, "name": "CPU"}, synctest.Row{"gitemid": 50001, "itemid": 20001})
	return f
}

func TestSchemaCommand_Print(t *testing.T) {
	out, err := execute(t, Options{}, "schema", "--dialect", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "create table graphs_items (")
	assert.Contains(t, out, "engine=InnoDB")
}

func TestSchemaCommand_ProxyOmitsServerTables(t *testing.T) {
	t.Setenv("SYNC_PROGRAM_TYPE", "proxy")
	out, err := execute(t, Options{}, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "create table hosts (")
	assert.NotContains(t, out, "create table graphs (")
	assert.NotContains(t, out, "create table group_prototype (")
}

func TestSchemaCommand_UnknownDialect(t *testing.T) {
	_, err := execute(t, Options{}, "schema", "--dialect", "oracle")
	assert.True(t, errors.Is(err, ports.ErrUnknownDialect))
}

func TestSchemaCommand_Apply(t *testing.T) {
	f := synctest.New(t)
	out, err := execute(t, useFixture(f), "schema", "--apply")
	require.NoError(t, err)
	assert.Empty(t, out)
	applied := f.Registry.AppliedSchema()
	require.NotEmpty(t, applied)
	assert.Contains(t, applied[0], "create table")
}

func TestLinkCommand(t *testing.T) {
	f := graphFixture(t)
	textfile := filepath.Join(t.TempDir(), "templatesync.prom")
	t.Setenv("METRICS_TEXTFILE", textfile)

	out, err := execute(t, useFixture(f), "link", "--host", "10100", "--templates", "10001")
	require.NoError(t, err)

	var result types.SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, uint64(10100), result.HostID)
	assert.Equal(t, []uint64{10001}, result.TemplateIDs)
	assert.Equal(t, 1, result.Created[models.AuditResourceGraph])
	assert.Len(t, f.Rows(models.TblGraphs), 2)

	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `templatesync_passes_total{outcome="ok"} 1`)
}

func TestLinkCommand_Failures(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "proxy",
			env:     map[string]string{"SYNC_PROGRAM_TYPE": "proxy"},
			args:    []string{"link", "--host", "10100", "--templates", "10001"},
			wantErr: ports.ErrProxyMode,
		},
		{
			name:    "unknown host",
			args:    []string{"link", "--host", "10999", "--templates", "10001"},
			wantErr: ports.ErrNotFound,
		},
		{
			name:    "missing templates",
			args:    []string{"link", "--host", "10100"},
			wantMsg: `required flag(s) "templates" not set`,
		},
		{
			name:    "bad config",
			env:     map[string]string{"SYNC_BULK_CHUNK_ROWS": "0"},
			args:    []string{"link", "--host", "10100", "--templates", "10001"},
			wantMsg: "bulk-chunk-rows must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			f := graphFixture(t)
			_, err := execute(t, useFixture(f), tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Len(t, f.Rows(models.TblGraphs), 1)
		})
	}
}
