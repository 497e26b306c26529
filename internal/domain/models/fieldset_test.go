package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSet(t *testing.T) {
	var s FieldSet[GraphField]
	assert.True(t, s.Empty())

	s.Set(GraphTemplateID)
	s.Set(GraphName)
	s.Set(GraphName)

	assert.False(t, s.Empty())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(GraphName))
	assert.False(t, s.Has(GraphWidth))
	assert.Equal(t, []GraphField{GraphName, GraphTemplateID}, s.Fields())
}

func TestUpdateIntent_Compare(t *testing.T) {
	u := NewUpdateIntent[GraphField](40002)
	u.Compare(GraphName, "CPU", "CPU")
	u.Compare(GraphWidth, 900, 900)
	assert.True(t, u.Dirty.Empty())

	u.Compare(GraphHeight, 200, 300)
	u.Compare(GraphName, "CPU load", "CPU")
	u.Compare(GraphName, "again", "ignored")

	changes := u.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, Change[GraphField]{Field: GraphName, Old: "CPU load", New: "CPU"}, changes[0])
	assert.Equal(t, Change[GraphField]{Field: GraphHeight, Old: 200, New: 300}, changes[1])
}

func TestUpdateIntent_CompareFloat(t *testing.T) {
	tests := []struct {
		name      string
		original  float64
		candidate float64
		dirty     bool
	}{
		{"equal", 100, 100, false},
		{"within tolerance", 100, 100.0000005, false},
		{"negative within tolerance", -0.5, -0.5000009, false},
		{"outside tolerance", 100, 100.00001, true},
		{"sign", 1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUpdateIntent[GraphField](1)
			u.CompareFloat(GraphYAxisMax, tt.original, tt.candidate)
			assert.Equal(t, tt.dirty, u.Dirty.Has(GraphYAxisMax))
		})
	}
}

func TestNullableID(t *testing.T) {
	assert.Nil(t, NullableID(0))
	assert.Equal(t, uint64(7), NullableID(7))
}
