package readers

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

// GetHostFlags returns the flags byte of a host
func (r *Reader) GetHostFlags(ctx context.Context, hostID uint64) (int, error) {
	args := r.args()
	rows, err := r.query(ctx, "select flags from hosts where hostid="+args.Add(hostID), args.Values()...)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read flags of host %d", hostID)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, errors.Wrapf(err, "failed to read flags of host %d", hostID)
		}
		return 0, errors.Wrapf(ports.ErrNotFound, "host %d", hostID)
	}
	var flags int
	if err := rows.Scan(&flags); err != nil {
		return 0, errors.Wrap(err, "failed to scan host flags")
	}
	return flags, nil
}

// ListTemplateHostPrototypes lists prototypes of the linked templates. RuleID
// of each result is the host-side rule inheriting the template rule.
func (r *Reader) ListTemplateHostPrototypes(ctx context.Context, consume func(models.HostPrototype) error, scope ports.LinkScope) error {
	if scope.IsEmpty() {
		return nil
	}
	args := r.args()
	query := fmt.Sprintf(`select hi.itemid,th.hostid,th.host,th.name,th.status,th.discover,th.custom_interfaces,
	coalesce(th.templateid,0),coalesce(hinv.inventory_mode,-1)
from items hi
	join items ti on ti.itemid=hi.templateid
	join host_discovery thd on thd.parent_itemid=ti.itemid
	join hosts th on th.hostid=thd.hostid
	left join host_inventory hinv on hinv.hostid=th.hostid
where hi.hostid=%s and %s
order by th.hostid`, args.Add(scope.HostID), args.In("ti.hostid", scope.TemplateIDs))

	return errors.Wrapf(r.listHostPrototypes(ctx, consume, query, args.Values()),
		"failed to list template host prototypes of %s", scope)
}

// ListHostPrototypes lists prototypes owned by the rules
func (r *Reader) ListHostPrototypes(ctx context.Context, consume func(models.HostPrototype) error, scope ports.RuleScope) error {
	if scope.IsEmpty() {
		return nil
	}
	args := r.args()
	query := fmt.Sprintf(`select hd.parent_itemid,h.hostid,h.host,h.name,h.status,h.discover,h.custom_interfaces,
	coalesce(h.templateid,0),coalesce(hinv.inventory_mode,-1)
from hosts h
	join host_discovery hd on hd.hostid=h.hostid
	left join host_inventory hinv on hinv.hostid=h.hostid
where %s
order by h.hostid`, args.In("hd.parent_itemid", scope.RuleIDs))

	return errors.Wrapf(r.listHostPrototypes(ctx, consume, query, args.Values()),
		"failed to list host prototypes of %s", scope)
}

// ListDiscoveredGroupIDs lists host groups created from the group prototypes
func (r *Reader) ListDiscoveredGroupIDs(ctx context.Context, groupPrototypeIDs []uint64) ([]uint64, error) {
	if len(groupPrototypeIDs) == 0 {
		return nil, nil
	}
	args := r.args()
	ids, err := r.selectIDs(ctx,
		"select groupid from group_discovery where "+args.In("parent_group_prototypeid", groupPrototypeIDs),
		args.Values()...)
	return ids, errors.Wrap(err, "failed to list discovered groups")
}

func (r *Reader) listHostPrototypes(ctx context.Context, consume func(models.HostPrototype) error, query string, args []any) error {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var (
		protos []models.HostPrototype
		ids    []uint64
	)
	for rows.Next() {
		var p models.HostPrototype
		err := rows.Scan(&p.RuleID, &p.ID, &p.Host, &p.Name, &p.Status, &p.Discover, &p.CustomInterfaces,
			&p.TemplateID, &p.InventoryMode)
		if err != nil {
			return errors.Wrap(err, "failed to scan host prototype")
		}
		protos = append(protos, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	if len(protos) == 0 {
		return nil
	}

	byID := make(map[uint64]*models.HostPrototype, len(protos))
	for i := range protos {
		byID[protos[i].ID] = &protos[i]
	}
	loaders := []func(context.Context, []uint64, map[uint64]*models.HostPrototype) error{
		r.loadTemplateLinks,
		r.loadGroupPrototypes,
		r.loadMacros,
		r.loadTags,
		r.loadInterfaces,
	}
	for _, load := range loaders {
		if err := load(ctx, ids, byID); err != nil {
			return err
		}
	}

	for _, p := range protos {
		if err := consume(p); err != nil {
			return err
		}
	}
	return nil
}

// ownedRows runs a query over rows of the given prototypes. The first scanned
// column must be the owning hostid.
func (r *Reader) ownedRows(ctx context.Context, format string, ids []uint64, scan func(rows interface{ Scan(...any) error }) error) error {
	args := r.args()
	rows, err := r.query(ctx, fmt.Sprintf(format, args.In("hostid", ids)), args.Values()...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *Reader) loadTemplateLinks(ctx context.Context, ids []uint64, byID map[uint64]*models.HostPrototype) error {
	err := r.ownedRows(ctx, "select hostid,hosttemplateid,templateid from hosts_templates where %s order by hosttemplateid", ids,
		func(rows interface{ Scan(...any) error }) error {
			var (
				hostID uint64
				l      models.TemplateLink
			)
			if err := rows.Scan(&hostID, &l.ID, &l.TemplateID); err != nil {
				return err
			}
			p := byID[hostID]
			p.TemplateLinks = append(p.TemplateLinks, l)
			return nil
		})
	return errors.Wrap(err, "failed to load template links")
}

func (r *Reader) loadGroupPrototypes(ctx context.Context, ids []uint64, byID map[uint64]*models.HostPrototype) error {
	err := r.ownedRows(ctx, `select hostid,group_prototypeid,name,coalesce(groupid,0),coalesce(templateid,0)
from group_prototype where %s order by group_prototypeid`, ids,
		func(rows interface{ Scan(...any) error }) error {
			var (
				hostID uint64
				g      models.GroupPrototype
			)
			if err := rows.Scan(&hostID, &g.ID, &g.Name, &g.GroupID, &g.TemplateID); err != nil {
				return err
			}
			p := byID[hostID]
			p.GroupPrototypes = append(p.GroupPrototypes, g)
			return nil
		})
	return errors.Wrap(err, "failed to load group prototypes")
}

func (r *Reader) loadMacros(ctx context.Context, ids []uint64, byID map[uint64]*models.HostPrototype) error {
	err := r.ownedRows(ctx, `select hostid,hostmacroid,macro,value,description,type,automatic
from hostmacro where %s order by hostmacroid`, ids,
		func(rows interface{ Scan(...any) error }) error {
			var (
				hostID uint64
				m      models.HostMacro
			)
			if err := rows.Scan(&hostID, &m.ID, &m.Macro, &m.Value, &m.Description, &m.Type, &m.Automatic); err != nil {
				return err
			}
			p := byID[hostID]
			p.Macros = append(p.Macros, m)
			return nil
		})
	return errors.Wrap(err, "failed to load macros")
}

func (r *Reader) loadTags(ctx context.Context, ids []uint64, byID map[uint64]*models.HostPrototype) error {
	err := r.ownedRows(ctx, "select hostid,hosttagid,tag,value,automatic from host_tag where %s order by hosttagid", ids,
		func(rows interface{ Scan(...any) error }) error {
			var (
				hostID uint64
				t      models.Tag
			)
			if err := rows.Scan(&hostID, &t.ID, &t.Tag, &t.Value, &t.Automatic); err != nil {
				return err
			}
			p := byID[hostID]
			p.Tags = append(p.Tags, t)
			return nil
		})
	return errors.Wrap(err, "failed to load tags")
}

func (r *Reader) loadInterfaces(ctx context.Context, ids []uint64, byID map[uint64]*models.HostPrototype) error {
	args := r.args()
	query := fmt.Sprintf(`select i.hostid,i.interfaceid,i.main,i.type,i.useip,i.ip,i.dns,i.port,
	coalesce(s.version,0),coalesce(s.bulk,0),coalesce(s.community,''),coalesce(s.securityname,''),
	coalesce(s.securitylevel,0),coalesce(s.authpassphrase,''),coalesce(s.privpassphrase,''),
	coalesce(s.authprotocol,0),coalesce(s.privprotocol,0),coalesce(s.contextname,'')
from interface i
	left join interface_snmp s on s.interfaceid=i.interfaceid
where %s
order by i.interfaceid`, args.In("i.hostid", ids))

	rows, err := r.query(ctx, query, args.Values()...)
	if err != nil {
		return errors.Wrap(err, "failed to load interfaces")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hostID uint64
			kind   models.InterfaceType
			i      models.Interface
			s      models.SNMPDetails
		)
		err := rows.Scan(&hostID, &i.ID, &i.Main, &kind, &i.UseIP, &i.IP, &i.DNS, &i.Port,
			&s.Version, &s.Bulk, &s.Community, &s.SecurityName, &s.SecurityLevel, &s.AuthPassphrase,
			&s.PrivPassphrase, &s.AuthProtocol, &s.PrivProtocol, &s.ContextName)
		if err != nil {
			return errors.Wrap(err, "failed to scan interface")
		}
		if kind == models.InterfaceSNMP {
			i.Details = s
		} else {
			i.Details = models.PlainDetails{Kind: kind}
		}
		p := byID[hostID]
		p.Interfaces = append(p.Interfaces, i)
	}
	return errors.Wrap(rows.Err(), "failed to read interfaces")
}
