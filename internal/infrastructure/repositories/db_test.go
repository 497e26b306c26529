package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
)

func tableColumns(t *testing.T, id models.TableID) map[string]bool {
	for _, tbl := range Tables {
		if tbl.ID != id {
			continue
		}
		cols := make(map[string]bool, len(tbl.Columns))
		for _, c := range tbl.Columns {
			cols[c.Name] = true
		}
		return cols
	}
	require.Failf(t, "table not described", "%s", id)
	return nil
}

func TestTables_MutableFieldsHaveColumns(t *testing.T) {
	hosts := tableColumns(t, models.TblHosts)
	for f := models.HostPrototypeName; f <= models.HostPrototypeTemplateID; f++ {
		assert.True(t, hosts[f.Column()], "hosts.%s", f.Column())
	}

	graphs := tableColumns(t, models.TblGraphs)
	for f := 0; f < models.GraphFieldCount; f++ {
		col := models.GraphField(f).Column()
		assert.True(t, graphs[col], "graphs.%s", col)
	}

	series := tableColumns(t, models.TblGraphsItems)
	for f := models.SeriesDrawType; f <= models.SeriesType; f++ {
		assert.True(t, series[f.Column()], "graphs_items.%s", f.Column())
	}

	macros := tableColumns(t, models.TblHostMacro)
	for f := models.MacroValue; f <= models.MacroTypeField; f++ {
		assert.True(t, macros[f.Column()], "hostmacro.%s", f.Column())
	}
}
