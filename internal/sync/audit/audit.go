// Package audit holds AuditEmitter implementations
package audit

import (
	"sync"

	"github.com/go-logr/logr"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

var (
	_ ports.AuditEmitter = (*Recorder)(nil)
	_ ports.AuditEmitter = LogEmitter{}
)

// Recorder keeps every audit call in memory
type Recorder struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(rec models.AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Create implements ports.AuditEmitter
func (r *Recorder) Create(resource models.AuditResource, entityID uint64, name string) {
	r.add(models.AuditRecord{Action: models.AuditAdd, Resource: resource, EntityID: entityID, Name: name})
}

// Delete implements ports.AuditEmitter
func (r *Recorder) Delete(resource models.AuditResource, entityID uint64, name string) {
	r.add(models.AuditRecord{Action: models.AuditDelete, Resource: resource, EntityID: entityID, Name: name})
}

// UpdateField implements ports.AuditEmitter
func (r *Recorder) UpdateField(resource models.AuditResource, entityID uint64, field string, oldValue, newValue any) {
	r.add(models.AuditRecord{
		Action:   models.AuditUpdate,
		Resource: resource,
		EntityID: entityID,
		Field:    field,
		Old:      oldValue,
		New:      newValue,
	})
}

// Records returns a copy of the recorded calls
func (r *Recorder) Records() []models.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditRecord(nil), r.records...)
}

// ReplayTo sends the recorded calls to e in the order they were made
func (r *Recorder) ReplayTo(e ports.AuditEmitter) {
	for _, rec := range r.Records() {
		switch rec.Action {
		case models.AuditAdd:
			e.Create(rec.Resource, rec.EntityID, rec.Name)
		case models.AuditDelete:
			e.Delete(rec.Resource, rec.EntityID, rec.Name)
		default:
			e.UpdateField(rec.Resource, rec.EntityID, rec.Field, rec.Old, rec.New)
		}
	}
}

// Filter returns recorded calls of one action
func (r *Recorder) Filter(action models.AuditAction) []models.AuditRecord {
	var out []models.AuditRecord
	for _, rec := range r.Records() {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

// Reset drops recorded calls
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// LogEmitter writes audit entries to a logr logger at V(1)
type LogEmitter struct {
	Logger logr.Logger
}

// Create implements ports.AuditEmitter
func (e LogEmitter) Create(resource models.AuditResource, entityID uint64, name string) {
	e.Logger.V(1).Info("audit", "action", models.AuditAdd.String(), "resource", resource, "id", entityID, "name", name)
}

// Delete implements ports.AuditEmitter
func (e LogEmitter) Delete(resource models.AuditResource, entityID uint64, name string) {
	e.Logger.V(1).Info("audit", "action", models.AuditDelete.String(), "resource", resource, "id", entityID, "name", name)
}

// UpdateField implements ports.AuditEmitter
func (e LogEmitter) UpdateField(resource models.AuditResource, entityID uint64, field string, oldValue, newValue any) {
	e.Logger.V(1).Info("audit", "action", models.AuditUpdate.String(), "resource", resource, "id", entityID,
		"field", field, "old", oldValue, "new", newValue)
}
