package mutation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

func TestEditSession_LatestEditWins(t *testing.T) {
	s := NewEditSession()
	v := colorVar()

	s.Set(v, Edit{Value: "#000000"})
	s.Set(v, Edit{Value: "#111111", ModeID: "dark"})
	s.Set(v, Edit{Value: "#ffffff"})

	assert.Equal(t, 2, s.Len())

	p, ok := s.Get("v1", "light")
	require.True(t, ok)
	assert.Equal(t, "#ffffff", p.Edit.Value)

	pending := s.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "", pending[0].Edit.ModeID, "first key keeps its position")
	assert.Equal(t, "dark", pending[1].Edit.ModeID)

	s.Delete("v1", "dark")
	assert.Equal(t, 1, s.Len())
	_, ok = s.Get("v1", "dark")
	assert.False(t, ok)
}

func TestPlanner_Flush(t *testing.T) {
	p := newPlanner(t)
	s := NewEditSession()

	s.Set(colorVar(), Edit{Value: "#ff0033"})
	s.Set(colorVar(), Edit{Kind: KindRename, Name: "bg/main", ModeID: "meta"})

	payload, err := p.Flush(s)
	require.NoError(t, err)
	assert.Len(t, payload.Variables, 1)
	assert.Len(t, payload.VariableModeValues, 1)
	assert.Equal(t, 0, s.Len())
}

func TestEditSession_VariableLevelEditsKeepValueEdits(t *testing.T) {
	p := newPlanner(t)
	s := NewEditSession()
	v := colorVar()

	s.Set(v, Edit{Kind: KindValue, Value: "#ff0000"})
	s.Set(v, Edit{Kind: KindRename, Name: "bg/brand"})
	require.Equal(t, 2, s.Len())

	_, ok := s.Get("v1", "light")
	assert.True(t, ok)
	rename, ok := s.GetKind("v1", KindRename)
	require.True(t, ok)
	assert.Equal(t, "bg/brand", rename.Edit.Name)

	payload, err := p.Flush(s)
	require.NoError(t, err)
	require.Len(t, payload.Variables, 1)
	assert.Equal(t, "bg/brand", payload.Variables[0].Name)
	require.Len(t, payload.VariableModeValues, 1)
	assert.Equal(t, "light", payload.VariableModeValues[0].ModeID)
	assertAPIColor(t, figma.APIColor{R: 1, G: 0, B: 0, A: 1}, payload.VariableModeValues[0].Value)
}

func TestEditSession_SlotsPerKind(t *testing.T) {
	s := NewEditSession()
	v := colorVar()

	// value and alias share the mode slot
	s.Set(v, Edit{Value: "#000000"})
	s.Set(v, Edit{Kind: KindAlias, TargetID: "v2"})
	// delete and type each get their own slot
	s.Set(v, Edit{Kind: KindDelete})
	s.Set(v, Edit{Kind: KindType, Type: core.TypeString})
	assert.Equal(t, 3, s.Len())

	p, ok := s.Get("v1", "light")
	require.True(t, ok)
	assert.Equal(t, KindAlias, p.Edit.Kind)

	kinds := make([]Kind, 0, 3)
	for _, pending := range s.Pending() {
		kinds = append(kinds, pending.Edit.Kind)
	}
	assert.Equal(t, []Kind{KindAlias, KindDelete, KindType}, kinds)

	s.DeleteKind("v1", KindDelete)
	_, ok = s.GetKind("v1", KindDelete)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestPlanner_FlushKeepsEditsOnError(t *testing.T) {
	p := New(Config{})
	s := NewEditSession()
	s.Set(core.Variable{ID: "ghost"}, Edit{Kind: KindDelete})

	payload, err := p.Flush(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.Nil(t, payload)
	assert.Equal(t, 1, s.Len())
}

func TestParseEdits(t *testing.T) {
	data := []byte(`
edits:
  - variable: VariableID:1:2
    mode: "1:0"
    value: "#ff0033"
  - kind: alias
    variable: VariableID:1:3
    target: VariableID:9:9
    target_file: lib
  - kind: create
    collection: c1
    name: accent/new
    type: color
    value: "0, 0, 0"
    values:
      dark: { r: 1, g: 1, b: 1 }
  - kind: delete
    variable: VariableID:1:4
`)
	specs, err := ParseEdits("edits.yaml", data)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	assert.Equal(t, KindValue, specs[0].Kind)
	e := specs[0].Edit()
	assert.Equal(t, "1:0", e.ModeID)
	assert.Equal(t, "#ff0033", e.Value)

	assert.Equal(t, "lib", specs[1].Edit().TargetFileID)

	create := specs[2].Edit()
	assert.Equal(t, core.TypeColor, create.Type)
	assert.Contains(t, create.Values, "dark")

	payload, err := newPlanner(t).Plan(core.Variable{}, create)
	require.NoError(t, err)
	for _, mv := range payload.VariableModeValues {
		if mv.ModeID == "dark" {
			assert.Equal(t, figma.APIColor{R: 1, G: 1, B: 1, A: 1}, mv.Value)
		}
	}
}

func TestParseEdits_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "edits: [", "invalid YAML"},
		{"unknown top-level field", "changes: []", `unknown field "changes"`},
		{"bad kind", "edits:\n  - kind: merge\n    variable: v", `edit 1: invalid kind "merge"`},
		{"missing variable", "edits:\n  - value: 1", "variable is required"},
		{"alias without target", "edits:\n  - kind: alias\n    variable: v", "target is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEdits("edits.yaml", []byte(tt.data))
			require.Error(t, err)
			var parseErr *EditsParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("edits:\n  - kind: delete\n    variable: v1\n"), 0o600))

	specs, err := LoadEdits(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, KindDelete, specs[0].Kind)

	_, err = LoadEdits(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
