package index

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

// MockGraphReader is a mock implementation of ports.GraphReader
type MockGraphReader struct {
	mock.Mock
}

func (m *MockGraphReader) ListTemplateGraphs(ctx context.Context, consume func(models.Graph) error, scope ports.LinkScope) error {
	args := m.Called(ctx, scope)
	for _, g := range args.Get(0).([]models.Graph) {
		if err := consume(g); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockGraphReader) ListHostGraphs(ctx context.Context, consume func(models.Graph) error, scope ports.HostGraphScope) error {
	args := m.Called(ctx, scope)
	for _, g := range args.Get(0).([]models.Graph) {
		if err := consume(g); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func series(keys ...string) []models.GraphSeries {
	out := make([]models.GraphSeries, len(keys))
	for i, k := range keys {
		out[i] = models.GraphSeries{ItemID: uint64(100 + i), ItemKey: k}
	}
	return out
}

func TestIndex_Lookups(t *testing.T) {
	ix := New(GraphAccessors)
	ix.AddTemplate(models.Graph{ID: 1, Name: "CPU"})
	ix.AddTemplate(models.Graph{ID: 2, Name: "CPU"})
	ix.AddHost(models.Graph{ID: 10, Name: "CPU", TemplateID: 1})
	ix.AddHost(models.Graph{ID: 11, Name: "CPU", TemplateID: 7})

	g, ok := ix.Template(2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), g.ID)
	_, ok = ix.Host(99)
	assert.False(t, ok)

	assert.Len(t, ix.HostsByName("CPU"), 2)
	assert.Empty(t, ix.HostsByName("Memory"))
	require.Len(t, ix.HostsByTemplateID(1), 1)
	assert.Equal(t, uint64(10), ix.HostsByTemplateID(1)[0].ID)
	assert.Equal(t, []uint64{1, 2}, ix.TemplateIDs())
	assert.Equal(t, []string{"CPU"}, ix.Names())
}

func TestLoadGraphs_Success(t *testing.T) {
	ctx := context.Background()
	reader := new(MockGraphReader)
	scope := ports.LinkScope{HostID: 5, TemplateIDs: []uint64{3}}

	reader.On("ListTemplateGraphs", ctx, scope).Return([]models.Graph{
		{ID: 1, Name: "CPU", Series: series("system.cpu.util", "system.cpu.load")},
	}, nil)
	reader.On("ListHostGraphs", ctx, ports.HostGraphScope{HostID: 5, Names: []string{"CPU"}, TemplateGraphIDs: []uint64{1}}).
		Return([]models.Graph{
			{ID: 10, Name: "CPU", TemplateID: 1, Series: series("b", "a")},
			{ID: 11, Name: "CPU"},
		}, nil)

	ix, err := LoadGraphs(ctx, reader, scope)
	require.NoError(t, err)

	tpl, _ := ix.Template(1)
	assert.Equal(t, []string{"system.cpu.load", "system.cpu.util"}, tpl.SeriesKeys())
	require.Len(t, ix.Hosts(), 1, "graphs without templateid are never candidates")
	assert.Equal(t, []string{"a", "b"}, ix.Hosts()[0].SeriesKeys())
	reader.AssertExpectations(t)
}

func TestLoadGraphs_NoTemplateGraphs(t *testing.T) {
	ctx := context.Background()
	reader := new(MockGraphReader)
	scope := ports.LinkScope{HostID: 5, TemplateIDs: []uint64{3}}
	reader.On("ListTemplateGraphs", ctx, scope).Return([]models.Graph{}, nil)

	ix, err := LoadGraphs(ctx, reader, scope)
	require.NoError(t, err)
	assert.Empty(t, ix.Templates())
	reader.AssertNotCalled(t, "ListHostGraphs", mock.Anything, mock.Anything)
}

func TestLoadGraphs_ReadError(t *testing.T) {
	ctx := context.Background()
	reader := new(MockGraphReader)
	scope := ports.LinkScope{HostID: 5, TemplateIDs: []uint64{3}}
	reader.On("ListTemplateGraphs", ctx, scope).Return([]models.Graph{{ID: 1, Name: "CPU"}}, nil)
	reader.On("ListHostGraphs", ctx, mock.Anything).Return([]models.Graph{}, errors.New("connection reset"))

	ix, err := LoadGraphs(ctx, reader, scope)
	assert.Error(t, err)
	assert.Nil(t, ix)
}
