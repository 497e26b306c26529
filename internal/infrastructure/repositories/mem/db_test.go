package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
)

func TestSnapshot_Insert_DefaultsAndNormalization(t *testing.T) {
	s := newSnapshot()
	require.NoError(t, s.insert(models.TblGraphs, Row{
		"graphid":   42,
		"name":      "CPU",
		"ymin_type": models.YAxisItemValue,
	}, false))

	row := s.tables[models.TblGraphs][0]
	assert.Equal(t, uint64(42), row["graphid"])
	assert.Equal(t, 900, row["width"])
	assert.Equal(t, 100.0, row["yaxismax"])
	assert.Equal(t, 2, row["ymin_type"])
	assert.Nil(t, row["templateid"])
}

func TestSnapshot_Insert_Constraints(t *testing.T) {
	s := newSnapshot()
	require.NoError(t, s.insert(models.TblHosts, Row{"hostid": uint64(1), "host": "h"}, true))

	tests := []struct {
		name  string
		table models.TableID
		row   Row
	}{
		{"duplicate key", models.TblHosts, Row{"hostid": uint64(1), "host": "x"}},
		{"missing parent", models.TblHostTag, Row{"hosttagid": uint64(1), "hostid": uint64(9), "tag": "a"}},
		{"null not null", models.TblHostTag, Row{"hosttagid": uint64(2), "hostid": uint64(1), "tag": nil}},
		{"too long", models.TblGraphsItems, Row{"gitemid": uint64(1), "graphid": uint64(1), "itemid": uint64(1), "color": "1234567"}},
		{"unknown column", models.TblHosts, Row{"hostid": uint64(5), "nope": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.insert(tt.table, tt.row, true))
		})
	}
}

func TestSnapshot_Delete_CascadesAndRestricts(t *testing.T) {
	s := newSnapshot()
	require.NoError(t, s.insert(models.TblHosts, Row{"hostid": uint64(1), "host": "proto"}, true))
	require.NoError(t, s.insert(models.TblHostGroups, Row{"groupid": uint64(10), "name": "g"}, true))
	require.NoError(t, s.insert(models.TblGroupPrototype, Row{"group_prototypeid": uint64(5), "hostid": uint64(1), "name": "{#A}"}, true))
	require.NoError(t, s.insert(models.TblGroupDiscovery, Row{"groupid": uint64(10), "parent_group_prototypeid": uint64(5), "name": "g"}, true))

	_, err := s.delete(models.TblGroupPrototype, "group_prototypeid", []uint64{5})
	assert.ErrorIs(t, err, ErrConstraint, "discovered group still points at the prototype")

	s = newSnapshot()
	require.NoError(t, s.insert(models.TblHosts, Row{"hostid": uint64(1), "host": "proto"}, true))
	require.NoError(t, s.insert(models.TblHostGroups, Row{"groupid": uint64(10), "name": "g"}, true))
	require.NoError(t, s.insert(models.TblGroupPrototype, Row{"group_prototypeid": uint64(5), "hostid": uint64(1), "name": "{#A}"}, true))
	require.NoError(t, s.insert(models.TblGroupDiscovery, Row{"groupid": uint64(10), "parent_group_prototypeid": uint64(5), "name": "g"}, true))

	n, err := s.delete(models.TblHostGroups, "groupid", []uint64{10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, s.tables[models.TblGroupDiscovery])

	n, err = s.delete(models.TblGroupPrototype, "group_prototypeid", []uint64{5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSnapshot_Update(t *testing.T) {
	s := newSnapshot()
	require.NoError(t, s.insert(models.TblHosts, Row{"hostid": uint64(1), "host": "h", "name": "old"}, true))

	n, err := s.update(ports.UpdateStatement{
		TableID:   models.TblHosts,
		Set:       []ports.Assignment{{Column: "name", Value: "new"}, {Column: "templateid", Value: models.NullableID(0)}},
		KeyColumn: "hostid",
		Key:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "new", s.tables[models.TblHosts][0]["name"])

	n, err = s.update(ports.UpdateStatement{
		TableID:   models.TblHosts,
		Set:       []ports.Assignment{{Column: "name", Value: "x"}},
		KeyColumn: "hostid",
		Key:       2,
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnapshot_Reserve(t *testing.T) {
	s := newSnapshot()
	require.NoError(t, s.insert(models.TblGraphs, Row{"graphid": uint64(7), "name": "a"}, true))

	first, err := s.reserve(models.TblGraphs, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), first)

	first, err = s.reserve(models.TblGraphs, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), first)

	_, err = s.reserve(models.TblHostDiscovery, 1)
	assert.Error(t, err)
}
