package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/figvars/pkg/core"
)

func TestSelectModeIDs(t *testing.T) {
	mapping := core.ModeIdentifierMap{
		"m1": "classcraft-primary-desktop-light",
		"m2": "classcraft-primary-desktop-dark",
		"m3": "acme-primary-desktop-default",
	}
	known := []string{"m1", "m2", "m3", "m4"}

	tests := []struct {
		name    string
		sel     Selection
		mapping core.ModeIdentifierMap
		want    []string
		match   Match
	}{
		{
			name:    "exact",
			sel:     Selection{"classcraft", "primary", "desktop", "dark"},
			mapping: mapping,
			want:    []string{"m2"},
			match:   MatchExact,
		},
		{
			name:    "exact ignores case",
			sel:     Selection{"ClassCraft", "primary", "desktop", "Light"},
			mapping: mapping,
			want:    []string{"m1"},
			match:   MatchExact,
		},
		{
			name:    "brand fallback",
			sel:     Selection{"classcraft", "g2-3", "tablet", "light"},
			mapping: core.ModeIdentifierMap{"m1": "classcraft-primary-desktop-light"},
			want:    []string{"m1"},
			match:   MatchBrand,
		},
		{
			name:    "brand fallback returns every brand mode",
			sel:     Selection{"classcraft", "g2-3", "tablet", "sepia"},
			mapping: mapping,
			want:    []string{"m1", "m2"},
			match:   MatchBrand,
		},
		{
			name:    "unknown brand fails open",
			sel:     Selection{"nobody", "primary", "desktop", "light"},
			mapping: mapping,
			want:    []string{"m1", "m2", "m3", "m4"},
			match:   MatchAll,
		},
		{
			name:    "empty mapping fails open",
			sel:     Selection{"classcraft", "primary", "desktop", "light"},
			mapping: core.ModeIdentifierMap{},
			want:    known,
			match:   MatchAll,
		},
		{
			name:    "empty selection fails open",
			mapping: mapping,
			want:    []string{"m1", "m2", "m3", "m4"},
			match:   MatchAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Select(tt.sel, tt.mapping, known)
			assert.Equal(t, tt.want, res.ModeIDs)
			assert.Equal(t, tt.match, res.Match)

			ids := SelectModeIDs(tt.sel.Brand, tt.sel.Grade, tt.sel.Device, tt.sel.Theme, tt.mapping, known)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterVariablesByMode(t *testing.T) {
	vars := []core.Variable{
		{ID: "a", ModeID: "m1"},
		{ID: "a", ModeID: "m2"},
		{ID: "b", ModeID: "m1"},
		{ID: "c", ModeID: "m3"},
	}

	got := FilterVariablesByMode(vars, []string{"m1", "m3"})
	assert.Equal(t, []core.Variable{vars[0], vars[2], vars[3]}, got)

	assert.Empty(t, FilterVariablesByMode(vars, nil))
	assert.Equal(t, []string{"m1", "m2", "m3"}, KnownModeIDs(vars))
}

func TestFilter_Snapshot(t *testing.T) {
	s := &core.Snapshot{
		Variables: []core.Variable{
			{ID: "a", ModeID: "m1"},
			{ID: "a", ModeID: "m2"},
		},
		ModeMapping: core.ModeIdentifierMap{"m2": "acme-primary-desktop-dark"},
	}

	vars, res := Filter(s, Selection{Brand: "acme", Grade: "primary", Device: "desktop", Theme: "dark"})
	assert.Equal(t, MatchExact, res.Match)
	assert.Len(t, vars, 1)
	assert.Equal(t, "m2", vars[0].ModeID)

	vars, res = Filter(s, Selection{})
	assert.Equal(t, MatchAll, res.Match)
	assert.Len(t, vars, 2)
}

func TestSelection_Key(t *testing.T) {
	sel := Selection{Brand: "Acme", Grade: "primary", Device: "desktop", Theme: "Dark"}
	assert.Equal(t, "acme-primary-desktop-dark", sel.Key())
	assert.False(t, sel.IsZero())
	assert.True(t, Selection{}.IsZero())
}
