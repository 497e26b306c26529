package hostprototypes

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/sync/stage"
	"templatesync-pg-backend/internal/sync/types"
)

const resource = models.AuditResourceHostPrototype

var (
	hostColumns = []string{
		"hostid", "host", "name", "status", "flags", "templateid", "discover", "custom_interfaces",
	}
	groupPrototypeColumns = []string{"group_prototypeid", "hostid", "name", "groupid", "templateid"}
	macroColumns          = []string{"hostmacroid", "hostid", "macro", "value", "description", "type", "automatic"}
	interfaceColumns      = []string{"interfaceid", "hostid", "main", "type", "useip", "ip", "dns", "port"}
	snmpColumns           = []string{
		"interfaceid", "version", "bulk", "community", "securityname", "securitylevel",
		"authpassphrase", "privpassphrase", "authprotocol", "privprotocol", "contextname",
	}
)

// save writes new prototypes first so that owned rows can reference them,
// then owned rows, then field updates and finally deletes
func (s *Synchronizer) save(ctx context.Context, p *plan, result *types.SyncResult) error {
	if err := s.createPrototypes(ctx, p.created, result); err != nil {
		return err
	}

	all := make([]*change, 0, len(p.created)+len(p.updated))
	all = append(all, p.created...)
	all = append(all, p.updated...)
	steps := []func(context.Context, []*change) error{
		s.insertLinks,
		s.saveGroupPrototypes,
		s.saveMacros,
		s.insertTags,
		s.insertInterfaces,
	}
	for _, step := range steps {
		if err := step(ctx, all); err != nil {
			return err
		}
	}

	if err := s.updatePrototypes(ctx, p.updated, result); err != nil {
		return err
	}
	if err := s.deleteOwned(ctx, p, result); err != nil {
		return err
	}
	return errors.Wrap(s.writer.Flush(ctx), "failed to flush host prototype changes")
}

func (s *Synchronizer) reserve(ctx context.Context, table models.TableID, count int) (uint64, error) {
	if count == 0 {
		return 0, nil
	}
	id, err := s.writer.ReserveIDs(ctx, table, count)
	return id, errors.Wrapf(err, "failed to reserve %s ids", table)
}

func execute(ctx context.Context, inserts ...ports.BulkInsert) error {
	for _, b := range inserts {
		if b.Rows() == 0 {
			continue
		}
		if err := b.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) createPrototypes(ctx context.Context, created []*change, result *types.SyncResult) error {
	id, err := s.reserve(ctx, models.TblHosts, len(created))
	if err != nil || len(created) == 0 {
		return err
	}

	hosts := s.writer.PrepareBulkInsert(models.TblHosts, hostColumns...)
	discovery := s.writer.PrepareBulkInsert(models.TblHostDiscovery, "hostid", "parent_itemid")
	inventory := s.writer.PrepareBulkInsert(models.TblHostInventory, "hostid", "inventory_mode")
	for _, c := range created {
		c.id = id
		id++
		t := c.template
		hosts.AddRow(c.id, t.Host, t.Name, t.Status, models.HostFlagPrototype, t.ID, t.Discover, t.CustomInterfaces)
		discovery.AddRow(c.id, t.RuleID)
		if c.inventory == inventoryInsert {
			inventory.AddRow(c.id, t.InventoryMode)
		}
		s.audit.Create(resource, c.id, t.Name)
	}
	result.AddCreated(resource, len(created))

	return errors.Wrap(execute(ctx, hosts, discovery, inventory), "failed to insert host prototypes")
}

func (s *Synchronizer) insertLinks(ctx context.Context, changes []*change) error {
	count := 0
	for _, c := range changes {
		count += len(c.newLinks)
	}
	id, err := s.reserve(ctx, models.TblHostsTemplates, count)
	if err != nil || count == 0 {
		return err
	}

	links := s.writer.PrepareBulkInsert(models.TblHostsTemplates, "hosttemplateid", "hostid", "templateid", "link_type")
	for _, c := range changes {
		for _, templateID := range c.newLinks {
			links.AddRow(id, c.id, templateID, models.TemplateLinkManual)
			if c.host != nil {
				s.audit.UpdateField(resource, c.id, fmt.Sprintf("templates[%d]", id), nil, templateID)
			}
			id++
		}
	}
	return errors.Wrap(links.Execute(ctx), "failed to insert template links")
}

func (s *Synchronizer) saveGroupPrototypes(ctx context.Context, changes []*change) error {
	count := 0
	for _, c := range changes {
		count += len(c.newGroups)
	}
	id, err := s.reserve(ctx, models.TblGroupPrototype, count)
	if err != nil {
		return err
	}

	groups := s.writer.PrepareBulkInsert(models.TblGroupPrototype, groupPrototypeColumns...)
	for _, c := range changes {
		for _, gp := range c.newGroups {
			groups.AddRow(id, c.id, gp.Name, models.NullableID(gp.GroupID), models.NullableID(gp.TemplateID))
			if c.host != nil {
				s.audit.UpdateField(resource, c.id, fmt.Sprintf("groupPrototypes[%d]", id), nil, gp.Name)
			}
			id++
		}
	}
	if err := execute(ctx, groups); err != nil {
		return errors.Wrap(err, "failed to insert group prototypes")
	}

	for _, c := range changes {
		for _, u := range c.groupUpdates {
			if err := stage.Apply(ctx, s.writer, models.TblGroupPrototype, "group_prototypeid", u); err != nil {
				return errors.Wrapf(err, "failed to update group prototype %d", u.ID)
			}
			stage.AuditChanges(s.audit, resource, c.id, fmt.Sprintf("groupPrototypes[%d].", u.ID), u)
		}
	}
	return nil
}

func (s *Synchronizer) saveMacros(ctx context.Context, changes []*change) error {
	count := 0
	for _, c := range changes {
		count += len(c.newMacros)
	}
	id, err := s.reserve(ctx, models.TblHostMacro, count)
	if err != nil {
		return err
	}

	macros := s.writer.PrepareBulkInsert(models.TblHostMacro, macroColumns...)
	for _, c := range changes {
		for _, m := range c.newMacros {
			macros.AddRow(id, c.id, m.Macro, m.Value, m.Description, int(m.Type), 0)
			if c.host != nil {
				s.audit.UpdateField(resource, c.id, fmt.Sprintf("macros[%d]", id), nil, m.Macro)
			}
			id++
		}
	}
	if err := execute(ctx, macros); err != nil {
		return errors.Wrap(err, "failed to insert macros")
	}

	for _, c := range changes {
		for _, m := range c.macroUpdates {
			if err := stage.Apply(ctx, s.writer, models.TblHostMacro, "hostmacroid", m.intent); err != nil {
				return errors.Wrapf(err, "failed to update macro %s", m.macro)
			}
			for _, ch := range m.intent.Changes() {
				oldValue, newValue := m.masked(ch)
				s.audit.UpdateField(resource, c.id, fmt.Sprintf("macros[%d].%s", m.intent.ID, ch.Field.Column()), oldValue, newValue)
			}
		}
	}
	return nil
}

// masked hides secret values: the old value when either type is secret, the
// new value when the new type is secret
func (m macroUpdate) masked(ch models.Change[models.MacroField]) (oldValue, newValue any) {
	oldValue, newValue = ch.Old, ch.New
	if ch.Field != models.MacroValue {
		return oldValue, newValue
	}
	if m.oldType == models.MacroSecret || m.newType == models.MacroSecret {
		oldValue = models.SecretMask
	}
	if m.newType == models.MacroSecret {
		newValue = models.SecretMask
	}
	return oldValue, newValue
}

func (s *Synchronizer) insertTags(ctx context.Context, changes []*change) error {
	count := 0
	for _, c := range changes {
		count += len(c.newTags)
	}
	id, err := s.reserve(ctx, models.TblHostTag, count)
	if err != nil || count == 0 {
		return err
	}

	tags := s.writer.PrepareBulkInsert(models.TblHostTag, "hosttagid", "hostid", "tag", "value", "automatic")
	for _, c := range changes {
		for _, t := range c.newTags {
			tags.AddRow(id, c.id, t.Tag, t.Value, 0)
			if c.host != nil {
				s.audit.UpdateField(resource, c.id, fmt.Sprintf("tags[%d]", id), nil, t.Tag+":"+t.Value)
			}
			id++
		}
	}
	return errors.Wrap(tags.Execute(ctx), "failed to insert tags")
}

func (s *Synchronizer) insertInterfaces(ctx context.Context, changes []*change) error {
	count := 0
	for _, c := range changes {
		count += len(c.newInterfaces)
	}
	id, err := s.reserve(ctx, models.TblInterface, count)
	if err != nil || count == 0 {
		return err
	}

	ifaces := s.writer.PrepareBulkInsert(models.TblInterface, interfaceColumns...)
	snmp := s.writer.PrepareBulkInsert(models.TblInterfaceSNMP, snmpColumns...)
	for _, c := range changes {
		for i := range c.newInterfaces {
			iface := &c.newInterfaces[i]
			ifaces.AddRow(id, c.id, iface.Main, int(iface.Type()), iface.UseIP, iface.IP, iface.DNS, iface.Port)
			if d, ok := iface.SNMP(); ok {
				snmp.AddRow(id, d.Version, d.Bulk, d.Community, d.SecurityName, d.SecurityLevel,
					d.AuthPassphrase, d.PrivPassphrase, d.AuthProtocol, d.PrivProtocol, d.ContextName)
			}
			if c.host != nil {
				s.audit.UpdateField(resource, c.id, fmt.Sprintf("interfaces[%d]", id), nil, describe(iface))
			}
			id++
		}
	}
	return errors.Wrap(execute(ctx, ifaces, snmp), "failed to insert interfaces")
}

func describe(i *models.Interface) string {
	addr := i.IP
	if i.UseIP == 0 {
		addr = i.DNS
	}
	out := addr + ":" + i.Port
	if d, ok := i.SNMP(); ok {
		out += " " + d.Describe()
	}
	return out
}

func (s *Synchronizer) updatePrototypes(ctx context.Context, updated []*change, result *types.SyncResult) error {
	inventory := s.writer.PrepareBulkInsert(models.TblHostInventory, "hostid", "inventory_mode")
	for _, c := range updated {
		if err := stage.Apply(ctx, s.writer, models.TblHosts, "hostid", c.fields); err != nil {
			return errors.Wrapf(err, "failed to update host prototype %d", c.id)
		}
		stage.AuditChanges(s.audit, resource, c.id, "", c.fields)

		mode := c.template.InventoryMode
		switch c.inventory {
		case inventoryInsert:
			inventory.AddRow(c.id, mode)
		case inventoryUpdate:
			err := s.writer.AppendStatement(ctx, ports.UpdateStatement{
				TableID:   models.TblHostInventory,
				Set:       []ports.Assignment{{Column: "inventory_mode", Value: mode}},
				KeyColumn: "hostid",
				Key:       c.id,
			})
			if err != nil {
				return errors.Wrapf(err, "failed to update inventory of host prototype %d", c.id)
			}
		}
		if c.inventory != inventoryKeep {
			s.audit.UpdateField(resource, c.id, "inventory_mode", c.host.InventoryMode, mode)
		}
		result.AddUpdated(resource, 1)
	}
	return errors.Wrap(execute(ctx, inventory), "failed to insert host inventory")
}

func (s *Synchronizer) deleteOwned(ctx context.Context, p *plan, result *types.SyncResult) error {
	var links, groups, macros, ifaces, inventory []uint64
	for _, c := range p.updated {
		for _, l := range c.delLinks {
			links = append(links, l.ID)
			s.audit.UpdateField(resource, c.id, fmt.Sprintf("templates[%d]", l.ID), l.TemplateID, nil)
		}
		for _, gp := range c.delGroups {
			groups = append(groups, gp.ID)
			s.audit.UpdateField(resource, c.id, fmt.Sprintf("groupPrototypes[%d]", gp.ID), gp.Name, nil)
		}
		for _, m := range c.delMacros {
			macros = append(macros, m.ID)
			s.audit.UpdateField(resource, c.id, fmt.Sprintf("macros[%d]", m.ID), m.Macro, nil)
		}
		for i := range c.delInterfaces {
			iface := &c.delInterfaces[i]
			ifaces = append(ifaces, iface.ID)
			s.audit.UpdateField(resource, c.id, fmt.Sprintf("interfaces[%d]", iface.ID), describe(iface), nil)
		}
		if c.inventory == inventoryDelete {
			inventory = append(inventory, c.id)
		}
	}
	for _, groupID := range p.discovered {
		s.audit.Delete(models.AuditResourceHostGroup, groupID, "")
	}
	result.AddDeleted(models.AuditResourceHostGroup, len(p.discovered))

	deletes := []struct {
		table  models.TableID
		column string
		keys   []uint64
	}{
		{models.TblHostsTemplates, "hosttemplateid", links},
		// discovered groups go first, taking their group_discovery rows with them
		{models.TblHostGroups, "groupid", p.discovered},
		{models.TblGroupPrototype, "group_prototypeid", groups},
		{models.TblHostMacro, "hostmacroid", macros},
		{models.TblInterface, "interfaceid", ifaces},
		{models.TblHostInventory, "hostid", inventory},
	}
	for _, d := range deletes {
		if err := stage.Delete(ctx, s.writer, d.table, d.column, d.keys); err != nil {
			return errors.Wrapf(err, "failed to delete from %s", d.table)
		}
	}
	return nil
}
