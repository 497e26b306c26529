package hostprototypes

import (
	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/sync/index"
)

type inventoryOp int

const (
	inventoryKeep inventoryOp = iota
	inventoryInsert
	inventoryUpdate
	inventoryDelete
)

// macroUpdate is a matched macro with the types needed to mask its values
type macroUpdate struct {
	intent  *models.UpdateIntent[models.MacroField]
	macro   string
	oldType models.MacroType
	newType models.MacroType
}

// change is everything one template prototype requires of its host copy
type change struct {
	template *models.HostPrototype
	host     *models.HostPrototype // nil until the prototype exists on the host
	id       uint64

	// fields holds hosts columns only; inventory_mode lives in host_inventory
	fields    *models.UpdateIntent[models.HostPrototypeField]
	inventory inventoryOp

	newLinks      []uint64
	newGroups     []models.GroupPrototype
	groupUpdates  []*models.UpdateIntent[models.GroupPrototypeField]
	newMacros     []models.HostMacro
	macroUpdates  []macroUpdate
	newTags       []models.Tag
	newInterfaces []models.Interface

	delLinks      []models.TemplateLink
	delGroups     []models.GroupPrototype
	delMacros     []models.HostMacro
	delInterfaces []models.Interface
}

func (c *change) dirty() bool {
	return !c.fields.Dirty.Empty() || c.inventory != inventoryKeep ||
		len(c.newLinks)+len(c.newGroups)+len(c.groupUpdates)+len(c.newMacros)+len(c.macroUpdates) > 0 ||
		len(c.newTags)+len(c.newInterfaces) > 0 ||
		len(c.delLinks)+len(c.delGroups)+len(c.delMacros)+len(c.delInterfaces) > 0
}

// plan is the outcome of the diff phase
type plan struct {
	created    []*change
	updated    []*change
	discovered []uint64
}

func diff(ix *index.Index[models.HostPrototype]) *plan {
	p := &plan{}
	taken := make(map[uint64]bool)
	for _, tpl := range ix.Templates() {
		var host *models.HostPrototype
		for _, h := range ix.HostsByName(index.PrototypeName(tpl.Key())) {
			if !taken[h.ID] {
				host = h
				break
			}
		}
		if host == nil {
			p.created = append(p.created, newChange(tpl))
			continue
		}
		taken[host.ID] = true
		if c := compare(tpl, host); c.dirty() {
			p.updated = append(p.updated, c)
		}
	}
	return p
}

// validate rejects interfaces about to be inserted whose SNMP parameters do
// not map to a usable SNMP configuration
func (p *plan) validate() error {
	for _, cs := range [][]*change{p.created, p.updated} {
		for _, c := range cs {
			for i := range c.newInterfaces {
				snmp, ok := c.newInterfaces[i].SNMP()
				if !ok {
					continue
				}
				if err := snmp.Validate(); err != nil {
					return errors.Wrapf(err, "host prototype %d has an invalid SNMP interface", c.template.ID)
				}
			}
		}
	}
	return nil
}

// newChange stages a template prototype and all it owns for insert
func newChange(tpl *models.HostPrototype) *change {
	c := &change{template: tpl, fields: models.NewUpdateIntent[models.HostPrototypeField](0)}
	for _, l := range tpl.TemplateLinks {
		c.newLinks = append(c.newLinks, l.TemplateID)
	}
	for _, gp := range tpl.GroupPrototypes {
		c.newGroups = append(c.newGroups, inherit(gp))
	}
	c.newMacros = append(c.newMacros, tpl.Macros...)
	c.newTags = append(c.newTags, tpl.Tags...)
	c.newInterfaces = append(c.newInterfaces, tpl.Interfaces...)
	if tpl.InventoryMode != models.InventoryDisabled {
		c.inventory = inventoryInsert
	}
	return c
}

func inherit(gp models.GroupPrototype) models.GroupPrototype {
	return models.GroupPrototype{Name: gp.Name, GroupID: gp.GroupID, TemplateID: gp.ID}
}

func compare(tpl, host *models.HostPrototype) *change {
	c := &change{template: tpl, host: host, id: host.ID}

	u := models.NewUpdateIntent[models.HostPrototypeField](host.ID)
	u.Compare(models.HostPrototypeName, host.Name, tpl.Name)
	u.Compare(models.HostPrototypeStatus, host.Status, tpl.Status)
	u.Compare(models.HostPrototypeDiscover, host.Discover, tpl.Discover)
	u.Compare(models.HostPrototypeCustomInterfaces, host.CustomInterfaces, tpl.CustomInterfaces)
	u.Compare(models.HostPrototypeTemplateID, host.TemplateID, tpl.ID)
	c.fields = u

	switch {
	case host.InventoryMode == tpl.InventoryMode:
	case host.InventoryMode == models.InventoryDisabled:
		c.inventory = inventoryInsert
	case tpl.InventoryMode == models.InventoryDisabled:
		c.inventory = inventoryDelete
	default:
		c.inventory = inventoryUpdate
	}

	diffLinks(c)
	diffGroups(c)
	diffMacros(c)
	diffTags(c)
	diffInterfaces(c)
	return c
}

func diffLinks(c *change) {
	want := make(map[uint64]bool, len(c.template.TemplateLinks))
	for _, l := range c.template.TemplateLinks {
		want[l.TemplateID] = true
	}
	have := make(map[uint64]bool, len(c.host.TemplateLinks))
	for _, l := range c.host.TemplateLinks {
		have[l.TemplateID] = true
		if !want[l.TemplateID] {
			c.delLinks = append(c.delLinks, l)
		}
	}
	for _, l := range c.template.TemplateLinks {
		if !have[l.TemplateID] {
			c.newLinks = append(c.newLinks, l.TemplateID)
		}
	}
}

type groupKey struct {
	name    string
	groupID uint64
}

func diffGroups(c *change) {
	have := make(map[groupKey][]*models.GroupPrototype)
	for i := range c.host.GroupPrototypes {
		gp := &c.host.GroupPrototypes[i]
		k := groupKey{gp.Name, gp.GroupID}
		have[k] = append(have[k], gp)
	}
	matched := make(map[uint64]bool)
	for _, tgp := range c.template.GroupPrototypes {
		k := groupKey{tgp.Name, tgp.GroupID}
		if len(have[k]) == 0 {
			c.newGroups = append(c.newGroups, inherit(tgp))
			continue
		}
		hgp := have[k][0]
		have[k] = have[k][1:]
		matched[hgp.ID] = true

		u := models.NewUpdateIntent[models.GroupPrototypeField](hgp.ID)
		u.Compare(models.GroupPrototypeTemplateID, hgp.TemplateID, tgp.ID)
		if !u.Dirty.Empty() {
			c.groupUpdates = append(c.groupUpdates, u)
		}
	}
	for _, hgp := range c.host.GroupPrototypes {
		if !matched[hgp.ID] {
			c.delGroups = append(c.delGroups, hgp)
		}
	}
}

func diffMacros(c *change) {
	have := make(map[string]*models.HostMacro, len(c.host.Macros))
	for i := range c.host.Macros {
		have[c.host.Macros[i].Macro] = &c.host.Macros[i]
	}
	want := make(map[string]bool, len(c.template.Macros))
	for _, tm := range c.template.Macros {
		want[tm.Macro] = true
		hm, ok := have[tm.Macro]
		if !ok {
			c.newMacros = append(c.newMacros, tm)
			continue
		}
		u := models.NewUpdateIntent[models.MacroField](hm.ID)
		u.Compare(models.MacroValue, hm.Value, tm.Value)
		u.Compare(models.MacroDescription, hm.Description, tm.Description)
		u.Compare(models.MacroTypeField, int(hm.Type), int(tm.Type))
		if !u.Dirty.Empty() {
			c.macroUpdates = append(c.macroUpdates, macroUpdate{intent: u, macro: hm.Macro, oldType: hm.Type, newType: tm.Type})
		}
	}
	for _, hm := range c.host.Macros {
		if !want[hm.Macro] && !hm.IsAutomatic() {
			c.delMacros = append(c.delMacros, hm)
		}
	}
}

type tagKey struct {
	tag, value string
}

func diffTags(c *change) {
	have := make(map[tagKey]bool, len(c.host.Tags))
	for _, t := range c.host.Tags {
		have[tagKey{t.Tag, t.Value}] = true
	}
	for _, t := range c.template.Tags {
		k := tagKey{t.Tag, t.Value}
		if !have[k] {
			have[k] = true
			c.newTags = append(c.newTags, t)
		}
	}
}

func diffInterfaces(c *change) {
	matched := make([]bool, len(c.host.Interfaces))
	for i := range c.template.Interfaces {
		ti := &c.template.Interfaces[i]
		found := false
		for j := range c.host.Interfaces {
			if !matched[j] && c.host.Interfaces[j].Equal(ti) {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			c.newInterfaces = append(c.newInterfaces, *ti)
		}
	}
	for j, ok := range matched {
		if !ok {
			c.delInterfaces = append(c.delInterfaces, c.host.Interfaces[j])
		}
	}
}
