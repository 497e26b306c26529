package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
)

func TestNewSyncResult(t *testing.T) {
	result := NewSyncResult(10, []uint64{1, 2})

	assert.Equal(t, uint64(10), result.HostID)
	assert.Equal(t, []uint64{1, 2}, result.TemplateIDs)
	assert.True(t, result.IsEmpty())
	assert.Zero(t, result.Total())
}

func TestSyncResult_Counters(t *testing.T) {
	result := NewSyncResult(10, nil)

	result.AddCreated(models.AuditResourceGraph, 2)
	result.AddUpdated(models.AuditResourceHostPrototype, 1)
	result.AddDeleted(models.AuditResourceHostGroup, 0)

	assert.False(t, result.IsEmpty())
	assert.Equal(t, 3, result.Total())
	assert.NotContains(t, result.Deleted, models.AuditResourceHostGroup)
	assert.Equal(t, []models.AuditResource{models.AuditResourceGraph, models.AuditResourceHostPrototype}, result.Resources())
}

func TestSyncResult_Merge(t *testing.T) {
	a := NewSyncResult(10, nil)
	a.AddCreated(models.AuditResourceGraph, 1)
	a.IncDetail(DetailNameCollisions)
	a.SetDetail(DetailRunID, "run-1")

	b := NewSyncResult(10, nil)
	b.SetTotalRequested(3)
	b.AddCreated(models.AuditResourceGraph, 2)
	b.IncDetail(DetailNameCollisions)

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 3, a.Created[models.AuditResourceGraph])
	assert.Equal(t, 3, a.TotalRequested)
	assert.Equal(t, 2, a.GetDetail(DetailNameCollisions))
	assert.Equal(t, "run-1", a.GetDetail(DetailRunID))
}

func TestSyncResult_JSON(t *testing.T) {
	result := NewSyncResult(10, []uint64{1})
	result.AddCreated(models.AuditResourceGraph, 1)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"created":{"graph":1}`)
}
