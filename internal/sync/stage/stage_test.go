package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/sync/audit"
)

// MockStatementWriter is a mock implementation of ports.StatementWriter
type MockStatementWriter struct {
	mock.Mock
}

func (m *MockStatementWriter) AppendStatement(ctx context.Context, stmt ports.Statement) error {
	return m.Called(ctx, stmt).Error(0)
}

func (m *MockStatementWriter) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStatementWriter) PrepareBulkInsert(table models.TableID, columns ...string) ports.BulkInsert {
	return m.Called(table, columns).Get(0).(ports.BulkInsert)
}

func TestUpdate_OnlyDirtyColumns(t *testing.T) {
	u := models.NewUpdateIntent[models.GraphField](42)
	u.Compare(models.GraphName, "cpu", "CPU")
	u.Compare(models.GraphWidth, 900, 900)
	u.Compare(models.GraphYMinItemID, uint64(7), uint64(0))
	u.CompareFloat(models.GraphYAxisMax, 100, 100.0000001)

	stmt := Update(models.TblGraphs, "graphid", u)
	assert.Equal(t, []string{"name", "ymin_itemid"}, stmt.Columns())
	assert.Equal(t, "CPU", stmt.Set[0].Value)
	assert.Nil(t, stmt.Set[1].Value)
	assert.Equal(t, uint64(42), stmt.Key)
}

func TestApply_SkipsClean(t *testing.T) {
	ctx := context.Background()
	w := new(MockStatementWriter)

	require.NoError(t, Apply(ctx, w, models.TblGraphs, "graphid", models.NewUpdateIntent[models.GraphField](1)))
	require.NoError(t, Delete(ctx, w, models.TblGraphs, "graphid", nil))
	w.AssertNotCalled(t, "AppendStatement", mock.Anything, mock.Anything)

	u := models.NewUpdateIntent[models.GraphField](1)
	u.Compare(models.GraphHeight, 200, 300)
	w.On("AppendStatement", ctx, mock.AnythingOfType("ports.UpdateStatement")).Return(nil).Once()
	require.NoError(t, Apply(ctx, w, models.TblGraphs, "graphid", u))
	w.AssertExpectations(t)
}

func TestAuditChanges(t *testing.T) {
	rec := audit.NewRecorder()
	u := models.NewUpdateIntent[models.SeriesField](3)
	u.Compare(models.SeriesColor, "FF0000", "00FF00")

	AuditChanges(rec, models.AuditResourceGraph, 10, "gitems.", u)
	require.Len(t, rec.Records(), 1)
	assert.Equal(t, "gitems.color", rec.Records()[0].Field)
	assert.Equal(t, uint64(10), rec.Records()[0].EntityID)
}
