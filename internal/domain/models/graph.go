package models

import "sort"

// YAxisType defines how a graph value axis bound is computed
type YAxisType int

const (
	// YAxisCalculated bound computed from data
	YAxisCalculated YAxisType = 0
	// YAxisFixed bound is a fixed number
	YAxisFixed YAxisType = 1
	// YAxisItemValue bound taken from the last value of an item
	YAxisItemValue YAxisType = 2
)

// Graph flags byte
const (
	GraphFlagNormal    = 0
	GraphFlagPrototype = 2
)

// Graph is a graph owned by a template or materialized on a host
type Graph struct {
	ID             uint64
	Name           string
	Width          int
	Height         int
	YAxisMin       float64
	YAxisMax       float64
	ShowWorkPeriod int
	ShowTriggers   int
	GraphType      int
	ShowLegend     int
	Show3D         int
	PercentLeft    float64
	PercentRight   float64
	YMinType       YAxisType
	YMaxType       YAxisType
	YMinItemID     uint64
	YMaxItemID     uint64
	TemplateID     uint64
	Flags          int
	Discover       int

	Series []GraphSeries
}

// GraphSeries is one graph item: a data series drawn on a graph
type GraphSeries struct {
	ID        uint64
	GraphID   uint64
	ItemID    uint64
	ItemKey   string
	DrawType  int
	SortOrder int
	Color     string
	YAxisSide int
	CalcFnc   int
	Type      int
}

// IsTemplated reports whether the graph carries a template back-reference
func (g *Graph) IsTemplated() bool {
	return g.TemplateID != 0
}

// SortSeriesByKey orders series by item key; ties keep their relative order.
func (g *Graph) SortSeriesByKey() {
	sort.SliceStable(g.Series, func(i, j int) bool {
		return g.Series[i].ItemKey < g.Series[j].ItemKey
	})
}

// SeriesKeys returns the series item keys in current order
func (g *Graph) SeriesKeys() []string {
	keys := make([]string, len(g.Series))
	for i := range g.Series {
		keys[i] = g.Series[i].ItemKey
	}
	return keys
}

// ItemRefs returns every item id the graph references: series items and
// item-bound axis items.
func (g *Graph) ItemRefs() []uint64 {
	refs := make([]uint64, 0, len(g.Series)+2)
	for i := range g.Series {
		refs = append(refs, g.Series[i].ItemID)
	}
	if g.YMinType == YAxisItemValue && g.YMinItemID != 0 {
		refs = append(refs, g.YMinItemID)
	}
	if g.YMaxType == YAxisItemValue && g.YMaxItemID != 0 {
		refs = append(refs, g.YMaxItemID)
	}
	return refs
}

// GraphField is a mutable graph column
type GraphField uint8

const (
	GraphName GraphField = iota
	GraphWidth
	GraphHeight
	GraphYAxisMin
	GraphYAxisMax
	GraphShowWorkPeriod
	GraphShowTriggers
	GraphTypeField
	GraphShowLegend
	GraphShow3D
	GraphPercentLeft
	GraphPercentRight
	GraphYMinType
	GraphYMaxType
	GraphYMinItemID
	GraphYMaxItemID
	GraphDiscover
	GraphTemplateID
)

var graphFieldColumns = [...]string{
	GraphName:           "name",
	GraphWidth:          "width",
	GraphHeight:         "height",
	GraphYAxisMin:       "yaxismin",
	GraphYAxisMax:       "yaxismax",
	GraphShowWorkPeriod: "show_work_period",
	GraphShowTriggers:   "show_triggers",
	GraphTypeField:      "graphtype",
	GraphShowLegend:     "show_legend",
	GraphShow3D:         "show_3d",
	GraphPercentLeft:    "percent_left",
	GraphPercentRight:   "percent_right",
	GraphYMinType:       "ymin_type",
	GraphYMaxType:       "ymax_type",
	GraphYMinItemID:     "ymin_itemid",
	GraphYMaxItemID:     "ymax_itemid",
	GraphDiscover:       "discover",
	GraphTemplateID:     "templateid",
}

// Column returns the column name
func (f GraphField) Column() string {
	return graphFieldColumns[f]
}

// GraphFieldCount is the number of mutable graph fields
const GraphFieldCount = len(graphFieldColumns)

// SeriesField is a mutable graph item column
type SeriesField uint8

const (
	SeriesDrawType SeriesField = iota
	SeriesSortOrder
	SeriesColor
	SeriesYAxisSide
	SeriesCalcFnc
	SeriesType
)

var seriesFieldColumns = [...]string{
	SeriesDrawType:  "drawtype",
	SeriesSortOrder: "sortorder",
	SeriesColor:     "color",
	SeriesYAxisSide: "yaxisside",
	SeriesCalcFnc:   "calc_fnc",
	SeriesType:      "type",
}

// Column returns the column name
func (f SeriesField) Column() string {
	return seriesFieldColumns[f]
}
