// Package graphs copies template graphs onto a host
package graphs

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/sync/index"
	"templatesync-pg-backend/internal/sync/resolver"
	"templatesync-pg-backend/internal/sync/stage"
	"templatesync-pg-backend/internal/sync/types"
)

// Source is what the synchronizer reads
type Source interface {
	ports.GraphReader
	ports.ItemReader
}

// Synchronizer mirrors template graphs and their series onto hosts
type Synchronizer struct {
	reader Source
	writer ports.Writer
	audit  ports.AuditEmitter
	logger logr.Logger
}

// NewSynchronizer creates a new graph synchronizer
func NewSynchronizer(reader Source, writer ports.Writer, audit ports.AuditEmitter, logger logr.Logger) *Synchronizer {
	return &Synchronizer{
		reader: reader,
		writer: writer,
		audit:  audit,
		logger: logger.WithName("graphs"),
	}
}

// match pairs a template graph with the host graph it updates. Series
// present on one side only are inserted into or deleted from the host graph.
type match struct {
	template  *models.Graph
	host      *models.Graph
	graph     *models.UpdateIntent[models.GraphField]
	series    []*models.UpdateIntent[models.SeriesField]
	newSeries []models.GraphSeries
	delSeries []models.GraphSeries
}

func (m *match) dirty() bool {
	if !m.graph.Dirty.Empty() || len(m.newSeries) > 0 || len(m.delSeries) > 0 {
		return true
	}
	for _, s := range m.series {
		if !s.Dirty.Empty() {
			return true
		}
	}
	return false
}

// plan is the outcome of the diff phase
type plan struct {
	updates []*match
	inserts []*models.Graph
}

// SynchronizeGraphs makes the host carry every graph of the linked templates
func (s *Synchronizer) SynchronizeGraphs(ctx context.Context, hostID uint64, templateIDs []uint64) (*types.SyncResult, error) {
	result := types.NewSyncResult(hostID, templateIDs)
	scope := ports.LinkScope{HostID: hostID, TemplateIDs: templateIDs}

	ix, err := index.LoadGraphs(ctx, s.reader, scope)
	if err != nil {
		return result, err
	}
	result.SetTotalRequested(len(ix.Templates()))
	if len(ix.Templates()) == 0 {
		return result, nil
	}

	var refs []uint64
	for _, g := range ix.Templates() {
		refs = append(refs, g.ItemRefs()...)
	}
	items, err := resolver.New(s.reader).Resolve(ctx, hostID, refs)
	if err != nil {
		return result, err
	}

	p := s.diff(ix, items, result)
	if err := s.save(ctx, p, result); err != nil {
		return result, err
	}

	s.logger.V(1).Info("Graphs synchronized", "host", hostID, "templates", templateIDs,
		"updated", len(p.updates), "inserted", len(p.inserts))
	return result, nil
}

// diff decides update-in-place or insert for every template graph
func (s *Synchronizer) diff(ix *index.Index[models.Graph], items resolver.Mapping, result *types.SyncResult) *plan {
	p := &plan{}
	taken := make(map[uint64]bool)

	for _, tpl := range ix.Templates() {
		want := s.resolveGraph(tpl, items, result)
		if len(want.Series) == 0 {
			s.logger.V(2).Info("Skipping graph without resolvable items", "graph", tpl.ID, "name", tpl.Name)
			result.IncDetail(types.DetailEmptyGraphs)
			continue
		}

		host, collision := findMatch(ix, tpl.ID, want, taken)
		if host == nil {
			if collision {
				s.logger.V(2).Info("Graph name taken by a graph with other items, creating a new one",
					"graph", tpl.ID, "name", tpl.Name)
				result.IncDetail(types.DetailNameCollisions)
			}
			p.inserts = append(p.inserts, want)
			continue
		}
		taken[host.ID] = true

		m := compare(want, host)
		if m.dirty() {
			p.updates = append(p.updates, m)
		}
	}
	return p
}

// resolveGraph returns the graph as it should look on the host: item ids
// remapped, unresolvable series dropped and templateid pointing at tpl
func (s *Synchronizer) resolveGraph(tpl *models.Graph, items resolver.Mapping, result *types.SyncResult) *models.Graph {
	want := *tpl
	want.TemplateID = tpl.ID
	want.Series = make([]models.GraphSeries, 0, len(tpl.Series))
	for _, gi := range tpl.Series {
		hostItemID := items.Lookup(gi.ItemID)
		if hostItemID == 0 {
			result.IncDetail(types.DetailUnresolved)
			continue
		}
		gi.ItemID = hostItemID
		want.Series = append(want.Series, gi)
	}
	want.YMinItemID = items.Lookup(tpl.YMinItemID)
	want.YMaxItemID = items.Lookup(tpl.YMaxItemID)
	return &want
}

// findMatch returns the host graph inheriting from the template graph when
// there is one: its series are reconciled whatever they are. Otherwise a
// host graph with the same name and the same series keys is taken.
// collision reports a same-named graph rejected for its series.
func findMatch(ix *index.Index[models.Graph], templateGraphID uint64, want *models.Graph, taken map[uint64]bool) (*models.Graph, bool) {
	for _, h := range ix.HostsByTemplateID(templateGraphID) {
		if !taken[h.ID] {
			return h, false
		}
	}
	collision := false
	for _, h := range ix.HostsByName(want.Name) {
		if taken[h.ID] {
			continue
		}
		if sameSeries(want, h) {
			return h, false
		}
		collision = true
	}
	return nil, collision
}

// sameSeries compares series item keys position by position; both sides are
// sorted by key
func sameSeries(a, b *models.Graph) bool {
	if len(a.Series) != len(b.Series) {
		return false
	}
	for i := range a.Series {
		if a.Series[i].ItemKey != b.Series[i].ItemKey {
			return false
		}
	}
	return true
}

// compare builds update intents for a matched pair
func compare(want, host *models.Graph) *match {
	g := models.NewUpdateIntent[models.GraphField](host.ID)
	g.Compare(models.GraphName, host.Name, want.Name)
	g.Compare(models.GraphWidth, host.Width, want.Width)
	g.Compare(models.GraphHeight, host.Height, want.Height)
	g.CompareFloat(models.GraphYAxisMin, host.YAxisMin, want.YAxisMin)
	g.CompareFloat(models.GraphYAxisMax, host.YAxisMax, want.YAxisMax)
	g.Compare(models.GraphShowWorkPeriod, host.ShowWorkPeriod, want.ShowWorkPeriod)
	g.Compare(models.GraphShowTriggers, host.ShowTriggers, want.ShowTriggers)
	g.Compare(models.GraphTypeField, host.GraphType, want.GraphType)
	g.Compare(models.GraphShowLegend, host.ShowLegend, want.ShowLegend)
	g.Compare(models.GraphShow3D, host.Show3D, want.Show3D)
	g.CompareFloat(models.GraphPercentLeft, host.PercentLeft, want.PercentLeft)
	g.CompareFloat(models.GraphPercentRight, host.PercentRight, want.PercentRight)
	g.Compare(models.GraphYMinType, host.YMinType, want.YMinType)
	g.Compare(models.GraphYMaxType, host.YMaxType, want.YMaxType)
	g.Compare(models.GraphYMinItemID, host.YMinItemID, want.YMinItemID)
	g.Compare(models.GraphYMaxItemID, host.YMaxItemID, want.YMaxItemID)
	g.Compare(models.GraphDiscover, host.Discover, want.Discover)
	g.Compare(models.GraphTemplateID, host.TemplateID, want.TemplateID)

	m := &match{template: want, host: host, graph: g}
	// both sides are sorted by item key
	i, j := 0, 0
	for i < len(want.Series) && j < len(host.Series) {
		w, h := &want.Series[i], &host.Series[j]
		switch {
		case w.ItemKey < h.ItemKey:
			m.newSeries = append(m.newSeries, *w)
			i++
		case w.ItemKey > h.ItemKey:
			m.delSeries = append(m.delSeries, *h)
			j++
		default:
			m.series = append(m.series, compareSeries(w, h))
			i++
			j++
		}
	}
	m.newSeries = append(m.newSeries, want.Series[i:]...)
	m.delSeries = append(m.delSeries, host.Series[j:]...)
	return m
}

func compareSeries(w, h *models.GraphSeries) *models.UpdateIntent[models.SeriesField] {
	u := models.NewUpdateIntent[models.SeriesField](h.ID)
	u.Compare(models.SeriesDrawType, h.DrawType, w.DrawType)
	u.Compare(models.SeriesSortOrder, h.SortOrder, w.SortOrder)
	u.Compare(models.SeriesColor, h.Color, w.Color)
	u.Compare(models.SeriesYAxisSide, h.YAxisSide, w.YAxisSide)
	u.Compare(models.SeriesCalcFnc, h.CalcFnc, w.CalcFnc)
	u.Compare(models.SeriesType, h.Type, w.Type)
	return u
}

var graphColumns = []string{
	"graphid", "name", "width", "height", "yaxismin", "yaxismax", "templateid",
	"show_work_period", "show_triggers", "graphtype", "show_legend", "show_3d",
	"percent_left", "percent_right", "ymin_type", "ymax_type", "ymin_itemid", "ymax_itemid",
	"flags", "discover",
}

var seriesColumns = []string{
	"gitemid", "graphid", "itemid", "drawtype", "sortorder", "color", "yaxisside", "calc_fnc", "type",
}

// save writes updates and series deletes first, then the staged inserts
func (s *Synchronizer) save(ctx context.Context, p *plan, result *types.SyncResult) error {
	seriesCount := 0
	for _, m := range p.updates {
		resource := models.GraphAuditResource(m.host.Flags)
		if err := stage.Apply(ctx, s.writer, models.TblGraphs, "graphid", m.graph); err != nil {
			return errors.Wrapf(err, "failed to update graph %d", m.host.ID)
		}
		stage.AuditChanges(s.audit, resource, m.host.ID, "", m.graph)
		for _, u := range m.series {
			if err := stage.Apply(ctx, s.writer, models.TblGraphsItems, "gitemid", u); err != nil {
				return errors.Wrapf(err, "failed to update item %d of graph %d", u.ID, m.host.ID)
			}
			stage.AuditChanges(s.audit, resource, m.host.ID, fmt.Sprintf("gitems[%d].", u.ID), u)
		}
		stale := make([]uint64, 0, len(m.delSeries))
		for _, gi := range m.delSeries {
			stale = append(stale, gi.ID)
			s.audit.UpdateField(resource, m.host.ID, fmt.Sprintf("gitems[%d]", gi.ID), gi.ItemKey, nil)
		}
		if err := stage.Delete(ctx, s.writer, models.TblGraphsItems, "gitemid", stale); err != nil {
			return errors.Wrapf(err, "failed to delete items of graph %d", m.host.ID)
		}
		seriesCount += len(m.newSeries)
		result.AddUpdated(resource, 1)
	}
	for _, g := range p.inserts {
		seriesCount += len(g.Series)
	}

	if seriesCount == 0 {
		return errors.Wrap(s.writer.Flush(ctx), "failed to flush graph updates")
	}

	seriesID, err := s.writer.ReserveIDs(ctx, models.TblGraphsItems, seriesCount)
	if err != nil {
		return errors.Wrap(err, "failed to reserve graph item ids")
	}
	series := s.writer.PrepareBulkInsert(models.TblGraphsItems, seriesColumns...)
	addSeries := func(graphID uint64, gi *models.GraphSeries) uint64 {
		series.AddRow(seriesID, graphID, gi.ItemID, gi.DrawType, gi.SortOrder, gi.Color, gi.YAxisSide, gi.CalcFnc, gi.Type)
		seriesID++
		return seriesID - 1
	}

	for _, m := range p.updates {
		resource := models.GraphAuditResource(m.host.Flags)
		for i := range m.newSeries {
			id := addSeries(m.host.ID, &m.newSeries[i])
			s.audit.UpdateField(resource, m.host.ID, fmt.Sprintf("gitems[%d]", id), nil, m.newSeries[i].ItemKey)
		}
	}

	if len(p.inserts) > 0 {
		graphID, err := s.writer.ReserveIDs(ctx, models.TblGraphs, len(p.inserts))
		if err != nil {
			return errors.Wrap(err, "failed to reserve graph ids")
		}
		graphs := s.writer.PrepareBulkInsert(models.TblGraphs, graphColumns...)
		for _, g := range p.inserts {
			graphs.AddRow(graphID, g.Name, g.Width, g.Height, g.YAxisMin, g.YAxisMax, models.NullableID(g.TemplateID),
				g.ShowWorkPeriod, g.ShowTriggers, g.GraphType, g.ShowLegend, g.Show3D,
				g.PercentLeft, g.PercentRight, int(g.YMinType), int(g.YMaxType),
				models.NullableID(g.YMinItemID), models.NullableID(g.YMaxItemID), g.Flags, g.Discover)
			for i := range g.Series {
				addSeries(graphID, &g.Series[i])
			}
			resource := models.GraphAuditResource(g.Flags)
			s.audit.Create(resource, graphID, g.Name)
			result.AddCreated(resource, 1)
			graphID++
		}
		if err := graphs.Execute(ctx); err != nil {
			return errors.Wrap(err, "failed to insert graphs")
		}
	}
	return errors.Wrap(series.Execute(ctx), "failed to insert graph items")
}
