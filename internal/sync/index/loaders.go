package index

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

// GraphAccessors index graphs by id, name and templateid
var GraphAccessors = Accessors[models.Graph]{
	ID:         func(g *models.Graph) uint64 { return g.ID },
	Name:       func(g *models.Graph) string { return g.Name },
	TemplateID: func(g *models.Graph) uint64 { return g.TemplateID },
}

// HostPrototypeAccessors index host prototypes by id and (rule, host) key
var HostPrototypeAccessors = Accessors[models.HostPrototype]{
	ID:         func(p *models.HostPrototype) uint64 { return p.ID },
	Name:       func(p *models.HostPrototype) string { return PrototypeName(p.Key()) },
	TemplateID: func(p *models.HostPrototype) uint64 { return p.TemplateID },
}

// PrototypeName is the name a host prototype is indexed under
func PrototypeName(k models.HostPrototypeKey) string {
	return fmt.Sprintf("%d/%s", k.RuleID, k.Host)
}

// LoadGraphs reads template graphs of the linked templates and the host
// graphs that may correspond to them. Series are sorted by item key.
func LoadGraphs(ctx context.Context, reader ports.GraphReader, scope ports.LinkScope) (*Index[models.Graph], error) {
	ix := New(GraphAccessors)
	err := reader.ListTemplateGraphs(ctx, func(g models.Graph) error {
		g.SortSeriesByKey()
		ix.AddTemplate(g)
		return nil
	}, scope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load template graphs")
	}
	if len(ix.Templates()) == 0 {
		return ix, nil
	}

	hostScope := ports.HostGraphScope{
		HostID:           scope.HostID,
		Names:            ix.Names(),
		TemplateGraphIDs: ix.TemplateIDs(),
	}
	err = reader.ListHostGraphs(ctx, func(g models.Graph) error {
		if !g.IsTemplated() {
			return nil
		}
		g.SortSeriesByKey()
		ix.AddHost(g)
		return nil
	}, hostScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load host graphs")
	}
	return ix, nil
}

// LoadHostPrototypes reads template prototypes reachable through the host's
// discovery rules and the prototypes those host rules already own
func LoadHostPrototypes(ctx context.Context, reader ports.HostPrototypeReader, scope ports.LinkScope) (*Index[models.HostPrototype], error) {
	ix := New(HostPrototypeAccessors)
	seen := make(map[uint64]bool)
	var rules []uint64
	err := reader.ListTemplateHostPrototypes(ctx, func(p models.HostPrototype) error {
		ix.AddTemplate(p)
		if !seen[p.RuleID] {
			seen[p.RuleID] = true
			rules = append(rules, p.RuleID)
		}
		return nil
	}, scope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load template host prototypes")
	}
	if len(rules) == 0 {
		return ix, nil
	}

	err = reader.ListHostPrototypes(ctx, func(p models.HostPrototype) error {
		ix.AddHost(p)
		return nil
	}, ports.RuleScope{RuleIDs: rules})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load host prototypes")
	}
	return ix, nil
}
