package types

import (
	"sort"

	"templatesync-pg-backend/internal/domain/models"
)

// Detail keys set by the synchronizers
const (
	DetailRunID          = "run_id"
	DetailNameCollisions = "name_collisions"
	DetailUnresolved     = "unresolved_items"
	DetailSkipped        = "skipped"
	DetailEmptyGraphs    = "empty_graphs"
)

// SyncResult represents the result of one synchronization pass of a host
type SyncResult struct {
	// HostID is the host the templates are linked to
	HostID uint64 `json:"host_id"`

	// TemplateIDs are the linked templates
	TemplateIDs []uint64 `json:"template_ids"`

	// TotalRequested is the number of template objects considered
	TotalRequested int `json:"total_requested"`

	// Created, Updated and Deleted count entities per audit resource
	Created map[models.AuditResource]int `json:"created"`
	Updated map[models.AuditResource]int `json:"updated"`
	Deleted map[models.AuditResource]int `json:"deleted"`

	// Details contains additional information about the synchronization
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewSyncResult creates a new SyncResult
func NewSyncResult(hostID uint64, templateIDs []uint64) *SyncResult {
	return &SyncResult{
		HostID:      hostID,
		TemplateIDs: templateIDs,
		Created:     make(map[models.AuditResource]int),
		Updated:     make(map[models.AuditResource]int),
		Deleted:     make(map[models.AuditResource]int),
		Details:     make(map[string]interface{}),
	}
}

// AddCreated counts n created entities
func (r *SyncResult) AddCreated(resource models.AuditResource, n int) {
	if n > 0 {
		r.Created[resource] += n
	}
}

// AddUpdated counts n updated entities
func (r *SyncResult) AddUpdated(resource models.AuditResource, n int) {
	if n > 0 {
		r.Updated[resource] += n
	}
}

// AddDeleted counts n deleted entities
func (r *SyncResult) AddDeleted(resource models.AuditResource, n int) {
	if n > 0 {
		r.Deleted[resource] += n
	}
}

// SetTotalRequested sets the number of template objects considered
func (r *SyncResult) SetTotalRequested(total int) {
	r.TotalRequested = total
}

// SetDetail sets a detail value
func (r *SyncResult) SetDetail(key string, value interface{}) {
	if r.Details == nil {
		r.Details = make(map[string]interface{})
	}
	r.Details[key] = value
}

// GetDetail gets a detail value
func (r *SyncResult) GetDetail(key string) interface{} {
	if r.Details == nil {
		return nil
	}
	return r.Details[key]
}

// IncDetail increments an integer detail
func (r *SyncResult) IncDetail(key string) {
	n, _ := r.GetDetail(key).(int)
	r.SetDetail(key, n+1)
}

// IsEmpty returns true if the pass changed nothing
func (r *SyncResult) IsEmpty() bool {
	return len(r.Created) == 0 && len(r.Updated) == 0 && len(r.Deleted) == 0
}

// Total returns the number of created, updated and deleted entities
func (r *SyncResult) Total() int {
	n := 0
	for _, m := range []map[models.AuditResource]int{r.Created, r.Updated, r.Deleted} {
		for _, v := range m {
			n += v
		}
	}
	return n
}

// Merge adds the counters and details of other into r
func (r *SyncResult) Merge(other *SyncResult) {
	if other == nil {
		return
	}
	r.TotalRequested += other.TotalRequested
	for k, v := range other.Created {
		r.AddCreated(k, v)
	}
	for k, v := range other.Updated {
		r.AddUpdated(k, v)
	}
	for k, v := range other.Deleted {
		r.AddDeleted(k, v)
	}
	for k, v := range other.Details {
		if n, ok := v.(int); ok {
			prev, _ := r.GetDetail(k).(int)
			r.SetDetail(k, prev+n)
			continue
		}
		r.SetDetail(k, v)
	}
}

// Resources returns every resource with a non-zero counter, sorted
func (r *SyncResult) Resources() []models.AuditResource {
	seen := make(map[models.AuditResource]bool)
	for _, m := range []map[models.AuditResource]int{r.Created, r.Updated, r.Deleted} {
		for k := range m {
			seen[k] = true
		}
	}
	out := make([]models.AuditResource, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
