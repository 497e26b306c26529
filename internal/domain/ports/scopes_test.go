package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopes_IsEmptyAndString(t *testing.T) {
	assert.True(t, EmptyScope{}.IsEmpty())
	assert.Equal(t, "empty", EmptyScope{}.String())

	link := LinkScope{HostID: 7, TemplateIDs: []uint64{10, 11}}
	assert.False(t, link.IsEmpty())
	assert.Equal(t, "host(7) templates(10,11)", link.String())
	assert.True(t, LinkScope{HostID: 7}.IsEmpty())

	graphs := HostGraphScope{HostID: 7, Names: []string{"CPU"}, TemplateGraphIDs: []uint64{3}}
	assert.False(t, graphs.IsEmpty())
	assert.Equal(t, "host(7) names(CPU) templategraphs(3)", graphs.String())

	assert.True(t, RuleScope{}.IsEmpty())
	assert.Equal(t, "rules(1,2)", RuleScope{RuleIDs: []uint64{1, 2}}.String())
}

func TestUpdateStatement_Columns(t *testing.T) {
	stmt := UpdateStatement{
		Set:       []Assignment{{Column: "name", Value: "CPU"}, {Column: "width", Value: 900}},
		KeyColumn: "graphid",
		Key:       5,
	}
	assert.Equal(t, []string{"name", "width"}, stmt.Columns())
}
