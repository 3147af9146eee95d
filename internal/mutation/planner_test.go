package mutation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/figvars/internal/testutil"
	"github.com/leapstack-labs/figvars/pkg/color"
	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func serverPayload() *figma.Payload {
	return &figma.Payload{Meta: figma.Meta{
		VariableCollections: map[string]figma.Collection{
			"c1": {
				ID:            "c1",
				Name:          "Brand",
				DefaultModeID: "light",
				Modes: []figma.Mode{
					{ModeID: "light", Name: "ClassCraft (Light)"},
					{ModeID: "dark", Name: "ClassCraft (Dark)"},
					{ModeID: "hc", Name: "ClassCraft (High Contrast)"},
				},
			},
			"c2": {ID: "c2", Name: "Spacing", DefaultModeID: "m1", Modes: []figma.Mode{{ModeID: "m1", Name: "Default"}}},
		},
		Variables: map[string]figma.Variable{
			"v1": {ID: "v1", Name: "bg/primary", VariableCollectionID: "c1", ResolvedType: "COLOR"},
			"v9": {ID: "v9", Name: "space/lg", VariableCollectionID: "c2", ResolvedType: "FLOAT"},
		},
	}}
}

func newPlanner(t *testing.T) *Planner {
	return New(Config{
		Server: serverPayload(),
		Now:    fixedNow,
		Logger: testutil.NewTestLogger(t),
	})
}

func colorVar() core.Variable {
	return core.Variable{
		ID:             "v1",
		Name:           "bg/primary",
		ModeID:         "light",
		CollectionID:   "c1",
		CollectionName: "Brand",
		FileID:         "main",
		ResolvedType:   core.TypeColor,
		Value:          core.DisplayColorValue(color.Opaque(255, 255, 255)),
	}
}

func TestPlan_LiteralValues(t *testing.T) {
	p := newPlanner(t)

	tests := []struct {
		name  string
		typ   core.ValueType
		value any
		want  any
	}{
		{"color from display rgba", core.TypeColor, color.Opaque(255, 0, 51), figma.APIColor{R: 1, G: 0, B: 0.2, A: 1}},
		{"color from api rgba", core.TypeColor, color.Opaque(1, 0, 0.2), figma.APIColor{R: 1, G: 0, B: 0.2, A: 1}},
		{"color from text", core.TypeColor, "255, 0, 51", figma.APIColor{R: 1, G: 0, B: 0.2, A: 1}},
		{"color from hex", core.TypeColor, "#ff0033", figma.APIColor{R: 1, G: 0, B: 0.2, A: 1}},
		{"dark color text", core.TypeColor, "0, 0, 1", figma.APIColor{R: 0, G: 0, B: 1.0 / 255, A: 1}},
		{"bool from string", core.TypeBoolean, "true", true},
		{"bool from FALSE", core.TypeBoolean, "FALSE", false},
		{"bool", core.TypeBoolean, true, true},
		{"number from string", core.TypeFloat, "12.5", 12.5},
		{"number with unit", core.TypeFloat, "16px", 16.0},
		{"number garbage", core.TypeFloat, "abc", 0.0},
		{"number from int", core.TypeFloat, 8, 8.0},
		{"string", core.TypeString, "Inter", "Inter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := colorVar()
			v.ResolvedType = tt.typ
			payload, err := p.Plan(v, Edit{Kind: KindValue, Value: tt.value})
			require.NoError(t, err)
			require.Len(t, payload.VariableModeValues, 1)
			assert.Empty(t, payload.Variables)

			mv := payload.VariableModeValues[0]
			assert.Equal(t, "v1", mv.VariableID)
			assert.Equal(t, "light", mv.ModeID)
			if want, ok := tt.want.(figma.APIColor); ok {
				got, ok := mv.Value.(figma.APIColor)
				require.True(t, ok, "got %T", mv.Value)
				assert.InDelta(t, want.R, got.R, 1e-9)
				assert.InDelta(t, want.G, got.G, 1e-9)
				assert.InDelta(t, want.B, got.B, 1e-9)
				assert.InDelta(t, want.A, got.A, 1e-9)
				return
			}
			assert.Equal(t, tt.want, mv.Value)
		})
	}
}

func TestPlan_ColorTextKeepsAlpha(t *testing.T) {
	p := newPlanner(t)
	v := colorVar()
	v.Value = core.DisplayColorValue(color.RGBA{R: 1, G: 2, B: 3, A: 0.5})

	payload, err := p.Plan(v, Edit{Value: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, payload.VariableModeValues[0].Value.(figma.APIColor).A)
}

func TestPlan_Alias(t *testing.T) {
	p := newPlanner(t)

	payload, err := p.Plan(colorVar(), Edit{Kind: KindAlias, TargetID: "VariableID:2:3", ModeID: "dark"})
	require.NoError(t, err)
	assert.Equal(t, []figma.ModeValue{{
		VariableID: "v1",
		ModeID:     "dark",
		Value:      figma.Alias{Type: figma.AliasType, ID: "VariableID:2:3"},
	}}, payload.VariableModeValues)

	payload, err = p.Plan(colorVar(), Edit{Kind: KindAlias, TargetID: "VariableID:2:3", TargetFileID: "lib"})
	require.NoError(t, err)
	assert.Equal(t, figma.Alias{Type: figma.AliasType, ID: "lib/VariableID:2:3"}, payload.VariableModeValues[0].Value)

	// same file is not prefixed
	payload, err = p.Plan(colorVar(), Edit{Kind: KindAlias, TargetID: "x", TargetFileID: "main"})
	require.NoError(t, err)
	assert.Equal(t, figma.Alias{Type: figma.AliasType, ID: "x"}, payload.VariableModeValues[0].Value)

	_, err = p.Plan(colorVar(), Edit{Kind: KindAlias})
	assert.Error(t, err)
}

func TestPlan_CreateFillsEveryMode(t *testing.T) {
	p := newPlanner(t)

	v := core.Variable{CollectionID: "c1", ModeID: "light", ResolvedType: core.TypeColor}
	payload, err := p.Plan(v, Edit{
		Kind:   KindCreate,
		Name:   "accent/new",
		Type:   core.TypeColor,
		Value:  "#ff0033",
		Values: map[string]any{"light": "#ff0033"},
	})
	require.NoError(t, err)

	require.Len(t, payload.Variables, 1)
	created := payload.Variables[0]
	assert.Equal(t, figma.ActionCreate, created.Action)
	assert.Equal(t, "temp-variable-1700000000000", created.ID)
	assert.Equal(t, "c1", created.VariableCollectionID)
	assert.Equal(t, "accent/new", created.Name)
	assert.Equal(t, "COLOR", created.ResolvedType)

	require.Len(t, payload.VariableModeValues, 3)
	modes := make([]string, 0, 3)
	for _, mv := range payload.VariableModeValues {
		modes = append(modes, mv.ModeID)
		assert.Equal(t, created.ID, mv.VariableID)
		assert.Equal(t, payload.VariableModeValues[0].Value, mv.Value)
	}
	assert.Equal(t, []string{"light", "dark", "hc"}, modes)
}

func TestPlan_CreateOnlyDefaultModeSet(t *testing.T) {
	p := newPlanner(t)

	payload, err := p.Plan(core.Variable{CollectionID: "c1", ModeID: "light"}, Edit{
		Kind:   KindCreate,
		Name:   "accent/only-default",
		Type:   core.TypeColor,
		Values: map[string]any{"light": "#ff0033"},
	})
	require.NoError(t, err)

	require.Len(t, payload.VariableModeValues, 3)
	for _, mv := range payload.VariableModeValues {
		assertAPIColor(t, figma.APIColor{R: 1, G: 0, B: 0.2, A: 1}, mv.Value)
	}
}

func assertAPIColor(t *testing.T, want figma.APIColor, value any) {
	t.Helper()
	got, ok := value.(figma.APIColor)
	require.True(t, ok, "got %T", value)
	assert.InDelta(t, want.R, got.R, 1e-9)
	assert.InDelta(t, want.G, got.G, 1e-9)
	assert.InDelta(t, want.B, got.B, 1e-9)
	assert.InDelta(t, want.A, got.A, 1e-9)
}

func TestPlan_CreateExplicitValues(t *testing.T) {
	p := newPlanner(t)

	payload, err := p.Plan(core.Variable{}, Edit{
		Kind:         KindCreate,
		CollectionID: "c1",
		Name:         "flag",
		Type:         core.TypeBoolean,
		Value:        false,
		Values:       map[string]any{"dark": "true"},
	})
	require.NoError(t, err)

	got := make(map[string]any)
	for _, mv := range payload.VariableModeValues {
		got[mv.ModeID] = mv.Value
	}
	assert.Equal(t, map[string]any{"light": false, "dark": true, "hc": false}, got)
}

func TestPlan_CreateUnknownCollectionUsesSelectedModes(t *testing.T) {
	p := New(Config{Now: fixedNow, SelectedModeIDs: []string{"a", "b"}})

	payload, err := p.Plan(core.Variable{ModeID: "a"}, Edit{
		Kind:         KindCreate,
		CollectionID: "elsewhere",
		Name:         "n",
		Type:         core.TypeFloat,
		Value:        "4",
	})
	require.NoError(t, err)
	require.Len(t, payload.VariableModeValues, 2)
	assert.Equal(t, "a", payload.VariableModeValues[0].ModeID)
	assert.Equal(t, "b", payload.VariableModeValues[1].ModeID)
	assert.Equal(t, 4.0, payload.VariableModeValues[1].Value)
}

func TestPlan_CreateTempIDsAreUnique(t *testing.T) {
	p := newPlanner(t)
	e := Edit{Kind: KindCreate, CollectionID: "c2", Name: "n", Type: core.TypeFloat}

	a, err := p.Plan(core.Variable{}, e)
	require.NoError(t, err)
	b, err := p.Plan(core.Variable{}, e)
	require.NoError(t, err)
	assert.NotEqual(t, a.Variables[0].ID, b.Variables[0].ID)
}

func TestPlan_CreateWithoutCollection(t *testing.T) {
	_, err := newPlanner(t).Plan(core.Variable{}, Edit{Kind: KindCreate, Name: "n"})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestPlan_Delete(t *testing.T) {
	p := newPlanner(t)

	tests := []struct {
		name     string
		variable core.Variable
		want     string
	}{
		{"by id", core.Variable{ID: "v1"}, "c1"},
		{"by collection name", core.Variable{ID: "unknown", CollectionName: "Spacing"}, "c2"},
		{"by variable name", core.Variable{ID: "unknown", Name: "space/lg"}, "c2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := p.Plan(tt.variable, Edit{Kind: KindDelete})
			require.NoError(t, err)
			assert.Equal(t, []figma.VariableChange{{
				Action:               figma.ActionDelete,
				ID:                   tt.variable.ID,
				VariableCollectionID: tt.want,
			}}, payload.Variables)
		})
	}
}

func TestPlan_DeleteWithoutCollection(t *testing.T) {
	p := newPlanner(t)

	payload, err := p.Plan(core.Variable{ID: "ghost", Name: "nope", CollectionName: "Nope"}, Edit{Kind: KindDelete})
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, ErrCollectionNotFound))
	assert.Contains(t, err.Error(), "Could not find variable collection ID")

	_, err = New(Config{}).Plan(core.Variable{ID: "v1"}, Edit{Kind: KindDelete})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestPlan_RenameAndType(t *testing.T) {
	p := newPlanner(t)

	payload, err := p.Plan(colorVar(), Edit{Kind: KindRename, Name: "bg/main"})
	require.NoError(t, err)
	assert.Equal(t, []figma.VariableChange{{
		Action:               figma.ActionUpdate,
		ID:                   "v1",
		VariableCollectionID: "c1",
		Name:                 "bg/main",
	}}, payload.Variables)

	_, err = p.Plan(colorVar(), Edit{Kind: KindRename})
	assert.Error(t, err)

	payload, err = p.Plan(colorVar(), Edit{Kind: KindType, Type: core.TypeString, Value: "white"})
	require.NoError(t, err)
	require.Len(t, payload.Variables, 1)
	assert.Equal(t, "STRING", payload.Variables[0].ResolvedType)
	assert.Equal(t, "white", payload.VariableModeValues[0].Value)

	_, err = p.Plan(colorVar(), Edit{Kind: KindType, Type: core.TypeAlias})
	assert.Error(t, err)
}

func TestPlan_UnknownKind(t *testing.T) {
	_, err := newPlanner(t).Plan(colorVar(), Edit{Kind: "explode"})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	p := newPlanner(t)
	v := colorVar()

	got, ok := p.Preview(v, Edit{Value: "10, 20, 30"})
	require.True(t, ok)
	assert.Equal(t, color.Opaque(10, 20, 30), got.Value.Color)
	assert.Equal(t, color.Opaque(255, 255, 255), v.Value.Color, "input untouched")

	got, ok = p.Preview(v, Edit{Kind: KindAlias, TargetID: "v2"})
	require.True(t, ok)
	assert.True(t, got.Value.IsAlias())
	assert.Equal(t, "v2", got.Reference.ID)

	_, ok = p.Preview(v, Edit{Value: "1", ModeID: "dark"})
	assert.False(t, ok)
	_, ok = p.Preview(v, Edit{Kind: KindDelete})
	assert.False(t, ok)
}
