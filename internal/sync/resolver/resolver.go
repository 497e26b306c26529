// Package resolver maps template item ids onto host item ids by item key
package resolver

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/ports"
)

// Mapping is templateItemID -> hostItemID
type Mapping map[uint64]uint64

// Lookup returns the host item of a template item, 0 when the host has no
// item with the same key
func (m Mapping) Lookup(templateItemID uint64) uint64 {
	return m[templateItemID]
}

// Resolver resolves item references for one host
type Resolver struct {
	reader ports.ItemReader
}

// New creates a resolver
func New(reader ports.ItemReader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve looks every referenced item up in one query. Zero and duplicate
// ids are dropped before querying.
func (r *Resolver) Resolve(ctx context.Context, hostID uint64, templateItemIDs []uint64) (Mapping, error) {
	seen := make(map[uint64]bool, len(templateItemIDs))
	ids := make([]uint64, 0, len(templateItemIDs))
	for _, id := range templateItemIDs {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return Mapping{}, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	found, err := r.reader.ResolveItemKeys(ctx, hostID, ids)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %d items on host %d", len(ids), hostID)
	}
	return Mapping(found), nil
}
