// Package hostprototypes copies template host prototypes onto the discovery
// rules of a host
package hostprototypes

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/sync/index"
	"templatesync-pg-backend/internal/sync/types"
)

// Synchronizer mirrors template host prototypes and the collections they own
type Synchronizer struct {
	reader ports.HostPrototypeReader
	writer ports.Writer
	audit  ports.AuditEmitter
	logger logr.Logger
}

// NewSynchronizer creates a new host prototype synchronizer
func NewSynchronizer(reader ports.HostPrototypeReader, writer ports.Writer, audit ports.AuditEmitter, logger logr.Logger) *Synchronizer {
	return &Synchronizer{
		reader: reader,
		writer: writer,
		audit:  audit,
		logger: logger.WithName("host-prototypes"),
	}
}

// SynchronizeHostPrototypes makes the discovery rules of a regular host carry
// the host prototypes of the linked templates
func (s *Synchronizer) SynchronizeHostPrototypes(ctx context.Context, hostID uint64, templateIDs []uint64) (*types.SyncResult, error) {
	result := types.NewSyncResult(hostID, templateIDs)

	flags, err := s.reader.GetHostFlags(ctx, hostID)
	if err != nil {
		return result, errors.Wrapf(err, "failed to read host %d", hostID)
	}
	if flags != models.HostFlagNormal {
		s.logger.V(2).Info("Host is not a regular host, skipping host prototypes", "host", hostID, "flags", flags)
		result.SetDetail(types.DetailSkipped, "host is not a regular host")
		return result, nil
	}

	ix, err := index.LoadHostPrototypes(ctx, s.reader, ports.LinkScope{HostID: hostID, TemplateIDs: templateIDs})
	if err != nil {
		return result, err
	}
	result.SetTotalRequested(len(ix.Templates()))
	if len(ix.Templates()) == 0 {
		return result, nil
	}

	p := diff(ix)
	if err := p.validate(); err != nil {
		return result, err
	}
	if p.discovered, err = s.discoveredGroups(ctx, p); err != nil {
		return result, err
	}
	if err := s.save(ctx, p, result); err != nil {
		return result, err
	}

	s.logger.V(1).Info("Host prototypes synchronized", "host", hostID, "templates", templateIDs,
		"created", len(p.created), "updated", len(p.updated))
	return result, nil
}

// discoveredGroups reads the host groups discovered from group prototypes
// about to be deleted
func (s *Synchronizer) discoveredGroups(ctx context.Context, p *plan) ([]uint64, error) {
	var ids []uint64
	for _, c := range p.updated {
		for _, gp := range c.delGroups {
			ids = append(ids, gp.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	groups, err := s.reader.ListDiscoveredGroupIDs(ctx, ids)
	return groups, errors.Wrap(err, "failed to read discovered host groups")
}
