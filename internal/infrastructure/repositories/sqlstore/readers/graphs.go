package readers

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
)

const graphSelect = `select g.graphid,g.name,g.width,g.height,g.yaxismin,g.yaxismax,coalesce(g.templateid,0),
	g.show_work_period,g.show_triggers,g.graphtype,g.show_legend,g.show_3d,g.percent_left,g.percent_right,
	g.ymin_type,g.ymax_type,coalesce(g.ymin_itemid,0),coalesce(g.ymax_itemid,0),g.flags,g.discover,
	gi.gitemid,i.itemid,i.key_,gi.drawtype,gi.sortorder,gi.color,gi.yaxisside,gi.calc_fnc,gi.type
from graphs g
	join graphs_items gi on gi.graphid=g.graphid
	join items i on i.itemid=gi.itemid
where `

const graphOrder = ` order by g.graphid,i.key_,gi.gitemid`

// ListTemplateGraphs lists graphs built from items of the linked templates
func (r *Reader) ListTemplateGraphs(ctx context.Context, consume func(models.Graph) error, scope ports.LinkScope) error {
	if scope.IsEmpty() {
		return nil
	}
	args := r.args()
	where := fmt.Sprintf("g.graphid in (select gi2.graphid from graphs_items gi2 join items i2 on i2.itemid=gi2.itemid where %s)",
		args.In("i2.hostid", scope.TemplateIDs))

	return errors.Wrapf(r.listGraphs(ctx, consume, where, args), "failed to list template graphs of %s", scope)
}

// ListHostGraphs lists templated graphs of the host selected by name or template graph id
func (r *Reader) ListHostGraphs(ctx context.Context, consume func(models.Graph) error, scope ports.HostGraphScope) error {
	if scope.IsEmpty() {
		return nil
	}
	args := r.args()
	var match []string
	if len(scope.Names) > 0 {
		match = append(match, args.InStrings("g.name", scope.Names))
	}
	if len(scope.TemplateGraphIDs) > 0 {
		match = append(match, args.In("g.templateid", scope.TemplateGraphIDs))
	}
	where := fmt.Sprintf("g.templateid is not null and (%s)"+
		" and g.graphid in (select gi2.graphid from graphs_items gi2 join items i2 on i2.itemid=gi2.itemid where i2.hostid=%s)",
		strings.Join(match, " or "), args.Add(scope.HostID))

	return errors.Wrapf(r.listGraphs(ctx, consume, where, args), "failed to list host graphs of %s", scope)
}

// listGraphs scans graph rows joined with their series; rows of one graph are adjacent.
func (r *Reader) listGraphs(ctx context.Context, consume func(models.Graph) error, where string, args *dialect.Args) error {
	rows, err := r.query(ctx, graphSelect+where+graphOrder, args.Values()...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var (
		cur     *models.Graph
		pending []models.Graph
	)
	for rows.Next() {
		var (
			g models.Graph
			s models.GraphSeries
		)
		err := rows.Scan(&g.ID, &g.Name, &g.Width, &g.Height, &g.YAxisMin, &g.YAxisMax, &g.TemplateID,
			&g.ShowWorkPeriod, &g.ShowTriggers, &g.GraphType, &g.ShowLegend, &g.Show3D, &g.PercentLeft, &g.PercentRight,
			&g.YMinType, &g.YMaxType, &g.YMinItemID, &g.YMaxItemID, &g.Flags, &g.Discover,
			&s.ID, &s.ItemID, &s.ItemKey, &s.DrawType, &s.SortOrder, &s.Color, &s.YAxisSide, &s.CalcFnc, &s.Type)
		if err != nil {
			return errors.Wrap(err, "failed to scan graph")
		}
		s.GraphID = g.ID
		if cur == nil || cur.ID != g.ID {
			pending = append(pending, g)
			cur = &pending[len(pending)-1]
		}
		cur.Series = append(cur.Series, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, g := range pending {
		if err := consume(g); err != nil {
			return err
		}
	}
	return nil
}
