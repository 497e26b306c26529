package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph_SortSeriesByKey(t *testing.T) {
	g := Graph{Series: []GraphSeries{
		{ID: 1, ItemKey: "system.cpu.util"},
		{ID: 2, ItemKey: "system.cpu.load"},
		{ID: 3, ItemKey: "system.cpu.util"},
	}}
	g.SortSeriesByKey()

	assert.Equal(t, []string{"system.cpu.load", "system.cpu.util", "system.cpu.util"}, g.SeriesKeys())
	assert.Equal(t, uint64(2), g.Series[0].ID)
	assert.Equal(t, uint64(1), g.Series[1].ID)
	assert.Equal(t, uint64(3), g.Series[2].ID)
}

func TestGraph_ItemRefs(t *testing.T) {
	g := Graph{
		Series:     []GraphSeries{{ItemID: 11}, {ItemID: 12}},
		YMinType:   YAxisItemValue,
		YMinItemID: 13,
		YMaxType:   YAxisFixed,
		YMaxItemID: 14,
	}
	assert.Equal(t, []uint64{11, 12, 13}, g.ItemRefs())

	g.YMinItemID = 0
	assert.Equal(t, []uint64{11, 12}, g.ItemRefs())
}

func TestGraph_IsTemplated(t *testing.T) {
	assert.False(t, (&Graph{}).IsTemplated())
	assert.True(t, (&Graph{TemplateID: 40001}).IsTemplated())
}

func TestGraphField_Column(t *testing.T) {
	assert.Equal(t, 18, GraphFieldCount)
	assert.Equal(t, "name", GraphName.Column())
	assert.Equal(t, "ymin_itemid", GraphYMinItemID.Column())
	assert.Equal(t, "templateid", GraphTemplateID.Column())
	assert.Equal(t, "calc_fnc", SeriesCalcFnc.Column())
}
