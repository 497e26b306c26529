// Package stage turns computed diffs into buffered statements and audit calls
package stage

import (
	"context"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

// Update builds the statement writing only the dirty columns of u. Id values
// are written as NULL when zero.
func Update[F models.Field](table models.TableID, keyColumn string, u *models.UpdateIntent[F]) ports.UpdateStatement {
	changes := u.Changes()
	set := make([]ports.Assignment, len(changes))
	for i, c := range changes {
		v := c.New
		if id, ok := v.(uint64); ok {
			v = models.NullableID(id)
		}
		set[i] = ports.Assignment{Column: c.Field.Column(), Value: v}
	}
	return ports.UpdateStatement{TableID: table, Set: set, KeyColumn: keyColumn, Key: u.ID}
}

// AuditChanges emits one UpdateField per change of u
func AuditChanges[F models.Field](a ports.AuditEmitter, resource models.AuditResource, entityID uint64, prefix string, u *models.UpdateIntent[F]) {
	for _, c := range u.Changes() {
		a.UpdateField(resource, entityID, prefix+c.Field.Column(), c.Old, c.New)
	}
}

// Apply appends the update of u when any field is dirty
func Apply[F models.Field](ctx context.Context, w ports.StatementWriter, table models.TableID, keyColumn string, u *models.UpdateIntent[F]) error {
	if u == nil || u.Dirty.Empty() {
		return nil
	}
	return w.AppendStatement(ctx, Update(table, keyColumn, u))
}

// Delete appends a delete of keys when there are any
func Delete(ctx context.Context, w ports.StatementWriter, table models.TableID, keyColumn string, keys []uint64) error {
	if len(keys) == 0 {
		return nil
	}
	return w.AppendStatement(ctx, ports.DeleteStatement{TableID: table, KeyColumn: keyColumn, Keys: keys})
}
