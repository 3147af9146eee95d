package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

func TestMerge_LastWriteWins(t *testing.T) {
	mainPayload := &figma.Payload{Meta: figma.Meta{
		VariableCollections: map[string]figma.Collection{"c1": collection("c1", "Base", "m1")},
		Variables: map[string]figma.Variable{
			"v1": variable("v1", "size/sm", "c1", "FLOAT", map[string]figma.RawValue{"m1": raw(core.NumberValue(4))}),
			"v2": variable("v2", "size/md", "c1", "FLOAT", map[string]figma.RawValue{"m1": raw(core.NumberValue(8))}),
		},
	}}
	themePayload := &figma.Payload{Meta: figma.Meta{
		VariableCollections: map[string]figma.Collection{"c1": collection("c1", "Base", "m1")},
		Variables: map[string]figma.Variable{
			"v1": variable("v1", "size/sm", "c1", "FLOAT", map[string]figma.RawValue{"m1": raw(core.NumberValue(6))}),
			"v3": variable("v3", "size/lg", "c1", "FLOAT", map[string]figma.RawValue{"m1": raw(core.NumberValue(16))}),
		},
	}}

	base, err := Normalize(mainPayload, Options{FileID: "main"})
	require.NoError(t, err)
	next, err := Normalize(themePayload, Options{FileID: "theme", Source: core.SourceTheme})
	require.NoError(t, err)

	merged, overwritten := Merge(base, next)

	assert.Equal(t, []core.Key{{ID: "v1", ModeID: "m1"}}, overwritten)
	require.Len(t, merged.AllVariables, 3)

	values := make(map[string]float64)
	for _, v := range merged.AllVariables {
		values[v.ID] = v.Value.Number
	}
	assert.Equal(t, map[string]float64{"v1": 6, "v2": 8, "v3": 16}, values)

	// inputs untouched
	for _, v := range base.AllVariables {
		if v.ID == "v1" {
			assert.Equal(t, 4.0, v.Value.Number)
		}
	}

	require.Len(t, merged.TreeData, 1)
	assert.Equal(t, 4, merged.Stats.Variables)
}

func TestMerge_NilSides(t *testing.T) {
	r := &Result{}
	got, keys := Merge(nil, r)
	assert.Same(t, r, got)
	assert.Nil(t, keys)

	got, _ = Merge(r, nil)
	assert.Same(t, r, got)
}
