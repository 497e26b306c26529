package mem

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

type reader struct {
	snap *snapshot
}

func (r *reader) Close() error {
	return nil
}

func idSet(ids []uint64) map[uint64]bool {
	out := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// graphsUsingHosts returns ids of graphs with a series on an item of hosts
func (r *reader) graphsUsingHosts(hosts map[uint64]bool) map[uint64]bool {
	out := make(map[uint64]bool)
	for _, gi := range r.snap.tables[models.TblGraphsItems] {
		item, ok := r.snap.first(models.TblItems, "itemid", gi.ID("itemid"))
		if ok && hosts[item.ID("hostid")] {
			out[gi.ID("graphid")] = true
		}
	}
	return out
}

func (r *reader) ListTemplateGraphs(_ context.Context, consume func(models.Graph) error, scope ports.LinkScope) error {
	if scope.IsEmpty() {
		return nil
	}
	ids := r.graphsUsingHosts(idSet(scope.TemplateIDs))
	return r.listGraphs(consume, func(g Row) bool { return ids[g.ID("graphid")] })
}

func (r *reader) ListHostGraphs(_ context.Context, consume func(models.Graph) error, scope ports.HostGraphScope) error {
	if scope.IsEmpty() {
		return nil
	}
	ids := r.graphsUsingHosts(map[uint64]bool{scope.HostID: true})
	names := make(map[string]bool, len(scope.Names))
	for _, n := range scope.Names {
		names[n] = true
	}
	templates := idSet(scope.TemplateGraphIDs)
	return r.listGraphs(consume, func(g Row) bool {
		if g["templateid"] == nil || !ids[g.ID("graphid")] {
			return false
		}
		return names[g.Str("name")] || templates[g.ID("templateid")]
	})
}

func (r *reader) listGraphs(consume func(models.Graph) error, pred func(Row) bool) error {
	rows := r.snap.rows(models.TblGraphs, pred)
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID("graphid") < rows[j].ID("graphid") })

	for _, g := range rows {
		graph := models.Graph{
			ID:             g.ID("graphid"),
			Name:           g.Str("name"),
			Width:          g.Int("width"),
			Height:         g.Int("height"),
			YAxisMin:       g.Float("yaxismin"),
			YAxisMax:       g.Float("yaxismax"),
			TemplateID:     g.ID("templateid"),
			ShowWorkPeriod: g.Int("show_work_period"),
			ShowTriggers:   g.Int("show_triggers"),
			GraphType:      g.Int("graphtype"),
			ShowLegend:     g.Int("show_legend"),
			Show3D:         g.Int("show_3d"),
			PercentLeft:    g.Float("percent_left"),
			PercentRight:   g.Float("percent_right"),
			YMinType:       models.YAxisType(g.Int("ymin_type")),
			YMaxType:       models.YAxisType(g.Int("ymax_type")),
			YMinItemID:     g.ID("ymin_itemid"),
			YMaxItemID:     g.ID("ymax_itemid"),
			Flags:          g.Int("flags"),
			Discover:       g.Int("discover"),
		}
		for _, gi := range r.snap.rows(models.TblGraphsItems, func(gi Row) bool { return gi.ID("graphid") == graph.ID }) {
			item, ok := r.snap.first(models.TblItems, "itemid", gi.ID("itemid"))
			if !ok {
				return errors.Errorf("graph %d uses missing item %d", graph.ID, gi.ID("itemid"))
			}
			graph.Series = append(graph.Series, models.GraphSeries{
				ID:        gi.ID("gitemid"),
				GraphID:   graph.ID,
				ItemID:    item.ID("itemid"),
				ItemKey:   item.Str("key_"),
				DrawType:  gi.Int("drawtype"),
				SortOrder: gi.Int("sortorder"),
				Color:     gi.Str("color"),
				YAxisSide: gi.Int("yaxisside"),
				CalcFnc:   gi.Int("calc_fnc"),
				Type:      gi.Int("type"),
			})
		}
		sort.SliceStable(graph.Series, func(i, j int) bool {
			a, b := graph.Series[i], graph.Series[j]
			if a.ItemKey != b.ItemKey {
				return a.ItemKey < b.ItemKey
			}
			return a.ID < b.ID
		})
		if len(graph.Series) == 0 {
			continue
		}
		if err := consume(graph); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) ResolveItemKeys(_ context.Context, hostID uint64, itemIDs []uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(itemIDs))
	hostItems := make(map[string]uint64)
	for _, i := range r.snap.rows(models.TblItems, func(i Row) bool { return i.ID("hostid") == hostID }) {
		hostItems[i.Str("key_")] = i.ID("itemid")
	}
	for _, id := range itemIDs {
		item, ok := r.snap.first(models.TblItems, "itemid", id)
		if !ok {
			continue
		}
		if hostItemID, ok := hostItems[item.Str("key_")]; ok {
			out[id] = hostItemID
		}
	}
	return out, nil
}

func (r *reader) GetHostFlags(_ context.Context, hostID uint64) (int, error) {
	h, ok := r.snap.first(models.TblHosts, "hostid", hostID)
	if !ok {
		return 0, errors.Wrapf(ports.ErrNotFound, "host %d", hostID)
	}
	return h.Int("flags"), nil
}

func (r *reader) ListTemplateHostPrototypes(_ context.Context, consume func(models.HostPrototype) error, scope ports.LinkScope) error {
	if scope.IsEmpty() {
		return nil
	}
	templates := idSet(scope.TemplateIDs)
	var out []models.HostPrototype
	for _, hostRule := range r.snap.rows(models.TblItems, func(i Row) bool { return i.ID("hostid") == scope.HostID }) {
		tplRule, ok := r.snap.first(models.TblItems, "itemid", hostRule.ID("templateid"))
		if !ok || hostRule["templateid"] == nil || !templates[tplRule.ID("hostid")] {
			continue
		}
		out = append(out, r.prototypesOf(tplRule.ID("itemid"), hostRule.ID("itemid"))...)
	}
	return r.emit(consume, out)
}

func (r *reader) ListHostPrototypes(_ context.Context, consume func(models.HostPrototype) error, scope ports.RuleScope) error {
	var out []models.HostPrototype
	for _, ruleID := range scope.RuleIDs {
		out = append(out, r.prototypesOf(ruleID, ruleID)...)
	}
	return r.emit(consume, out)
}

func (r *reader) ListDiscoveredGroupIDs(_ context.Context, groupPrototypeIDs []uint64) ([]uint64, error) {
	parents := idSet(groupPrototypeIDs)
	var ids []uint64
	for _, gd := range r.snap.rows(models.TblGroupDiscovery, func(gd Row) bool { return parents[gd.ID("parent_group_prototypeid")] }) {
		ids = append(ids, gd.ID("groupid"))
	}
	return ids, nil
}

func (r *reader) emit(consume func(models.HostPrototype) error, protos []models.HostPrototype) error {
	sort.Slice(protos, func(i, j int) bool { return protos[i].ID < protos[j].ID })
	for _, p := range protos {
		if err := consume(p); err != nil {
			return err
		}
	}
	return nil
}

// prototypesOf loads prototypes discovered by ruleID and reports them under reportRuleID
func (r *reader) prototypesOf(ruleID, reportRuleID uint64) []models.HostPrototype {
	var out []models.HostPrototype
	for _, hd := range r.snap.rows(models.TblHostDiscovery, func(hd Row) bool { return hd.ID("parent_itemid") == ruleID }) {
		h, ok := r.snap.first(models.TblHosts, "hostid", hd.ID("hostid"))
		if !ok {
			continue
		}
		p := models.HostPrototype{
			ID:               h.ID("hostid"),
			RuleID:           reportRuleID,
			Host:             h.Str("host"),
			Name:             h.Str("name"),
			Status:           h.Int("status"),
			Discover:         h.Int("discover"),
			CustomInterfaces: h.Int("custom_interfaces"),
			TemplateID:       h.ID("templateid"),
			InventoryMode:    models.InventoryDisabled,
		}
		if inv, ok := r.snap.first(models.TblHostInventory, "hostid", p.ID); ok {
			p.InventoryMode = inv.Int("inventory_mode")
		}
		r.loadOwned(&p)
		out = append(out, p)
	}
	return out
}

func (r *reader) owned(tid models.TableID, hostID uint64) []Row {
	rows := r.snap.rows(tid, func(row Row) bool { return row.ID("hostid") == hostID })
	if key := keyOf(tid); key != "" {
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID(key) < rows[j].ID(key) })
	}
	return rows
}

func (r *reader) loadOwned(p *models.HostPrototype) {
	for _, l := range r.owned(models.TblHostsTemplates, p.ID) {
		p.TemplateLinks = append(p.TemplateLinks, models.TemplateLink{ID: l.ID("hosttemplateid"), TemplateID: l.ID("templateid")})
	}
	for _, g := range r.owned(models.TblGroupPrototype, p.ID) {
		p.GroupPrototypes = append(p.GroupPrototypes, models.GroupPrototype{
			ID:         g.ID("group_prototypeid"),
			Name:       g.Str("name"),
			GroupID:    g.ID("groupid"),
			TemplateID: g.ID("templateid"),
		})
	}
	for _, m := range r.owned(models.TblHostMacro, p.ID) {
		p.Macros = append(p.Macros, models.HostMacro{
			ID:          m.ID("hostmacroid"),
			Macro:       m.Str("macro"),
			Value:       m.Str("value"),
			Description: m.Str("description"),
			Type:        models.MacroType(m.Int("type")),
			Automatic:   m.Int("automatic"),
		})
	}
	for _, t := range r.owned(models.TblHostTag, p.ID) {
		p.Tags = append(p.Tags, models.Tag{ID: t.ID("hosttagid"), Tag: t.Str("tag"), Value: t.Str("value"), Automatic: t.Int("automatic")})
	}
	for _, i := range r.owned(models.TblInterface, p.ID) {
		iface := models.Interface{
			ID:    i.ID("interfaceid"),
			Main:  i.Int("main"),
			UseIP: i.Int("useip"),
			IP:    i.Str("ip"),
			DNS:   i.Str("dns"),
			Port:  i.Str("port"),
		}
		kind := models.InterfaceType(i.Int("type"))
		if kind == models.InterfaceSNMP {
			var d models.SNMPDetails
			if s, ok := r.snap.first(models.TblInterfaceSNMP, "interfaceid", iface.ID); ok {
				d = models.SNMPDetails{
					Version:        s.Int("version"),
					Bulk:           s.Int("bulk"),
					Community:      s.Str("community"),
					SecurityName:   s.Str("securityname"),
					SecurityLevel:  s.Int("securitylevel"),
					AuthPassphrase: s.Str("authpassphrase"),
					PrivPassphrase: s.Str("privpassphrase"),
					AuthProtocol:   s.Int("authprotocol"),
					PrivProtocol:   s.Int("privprotocol"),
					ContextName:    s.Str("contextname"),
				}
			}
			iface.Details = d
		} else {
			iface.Details = models.PlainDetails{Kind: kind}
		}
		p.Interfaces = append(p.Interfaces, iface)
	}
}
