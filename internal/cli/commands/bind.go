package commands

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/figvars/internal/cli/config"
	"github.com/leapstack-labs/figvars/internal/modes"
	"github.com/leapstack-labs/figvars/internal/mutation"
	"github.com/leapstack-labs/figvars/internal/workspace"
	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

// boundEdit is an edit tied to the variable row it applies to.
type boundEdit struct {
	FileID   string
	Variable core.Variable
	Edit     mutation.Edit
}

// bindEdit looks up the variables, modes and collections an edit spec names
// by id or name and returns the planner edit.
func bindEdit(snap *core.Snapshot, spec mutation.EditSpec) (boundEdit, error) {
	e := spec.Edit()

	if spec.Kind == mutation.KindCreate {
		return bindCreate(snap, spec, e)
	}

	rows, err := findVariable(snap, spec.Variable, spec.File)
	if err != nil {
		return boundEdit{}, err
	}
	v, err := pickMode(rows, spec.Mode)
	if err != nil {
		return boundEdit{}, err
	}
	e.ModeID = v.ModeID

	if spec.Kind == mutation.KindAlias {
		targets, err := findVariable(snap, spec.Target, spec.TargetFile)
		if err != nil {
			return boundEdit{}, fmt.Errorf("alias target: %w", err)
		}
		e.TargetID = targets[0].ID
		e.TargetFileID = targets[0].FileID
		if targets[0].ID == v.ID && targets[0].FileID == v.FileID {
			return boundEdit{}, fmt.Errorf("variable %s cannot alias itself", v.Name)
		}
	}

	return boundEdit{FileID: v.FileID, Variable: v, Edit: e}, nil
}

func bindCreate(snap *core.Snapshot, spec mutation.EditSpec, e mutation.Edit) (boundEdit, error) {
	name := spec.Name
	if name == "" {
		name = spec.Variable
	}
	v := core.Variable{Name: name, FileID: spec.File}

	if c, ok := findCollection(snap, spec.Collection, spec.File); ok {
		e.CollectionID = c.ID
		v.CollectionID = c.ID
		v.CollectionName = c.Name
		v.FileID = c.FileID
		v.ModeID = c.DefaultModeID
		if spec.Mode != "" {
			v.ModeID = modeIDByName(c, spec.Mode)
		}
		if len(e.Values) > 0 {
			values := make(map[string]any, len(e.Values))
			for mode, val := range e.Values {
				values[modeIDByName(c, mode)] = val
			}
			e.Values = values
		}
	}
	if v.FileID == "" && len(snap.Files) > 0 {
		v.FileID = snap.Files[0].ID
	}

	// Creates have no id yet; key them by name so a session can hold several.
	v.ID = "new:" + name
	e.Name = name
	if e.Type == "" {
		e.Type = inferType(createSample(e))
	}
	return boundEdit{FileID: v.FileID, Variable: v, Edit: e}, nil
}

// createSample is the value a create's type is inferred from: its primary
// value, else the first explicit per-mode value.
func createSample(e mutation.Edit) any {
	if e.Value != nil || len(e.Values) == 0 {
		return e.Value
	}
	modes := make([]string, 0, len(e.Values))
	for m := range e.Values {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return e.Values[modes[0]]
}

// inferType guesses the type of a created variable from its value.
func inferType(raw any) core.ValueType {
	switch x := raw.(type) {
	case bool:
		return core.TypeBoolean
	case int, int64, float64:
		return core.TypeFloat
	case string:
		lower := strings.ToLower(strings.TrimSpace(x))
		if strings.HasPrefix(lower, "#") || strings.HasPrefix(lower, "rgb") {
			return core.TypeColor
		}
	}
	return core.TypeString
}

// findCollection returns the collection with the id or name, preferring
// fileID's collections when set.
func findCollection(snap *core.Snapshot, ref, fileID string) (core.Collection, bool) {
	if ref == "" {
		return core.Collection{}, false
	}
	if c, ok := snap.Collections[ref]; ok {
		return c, true
	}

	ids := make([]string, 0, len(snap.Collections))
	for id := range snap.Collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var fallback *core.Collection
	for _, id := range ids {
		c := snap.Collections[id]
		if !strings.EqualFold(c.Name, ref) {
			continue
		}
		if fileID == "" || c.FileID == fileID {
			return c, true
		}
		if fallback == nil {
			fallback = &c
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return core.Collection{}, false
}

func modeIDByName(c core.Collection, ref string) string {
	for _, m := range c.Modes {
		if m.ModeID == ref || strings.EqualFold(m.Name, ref) {
			return m.ModeID
		}
	}
	return ref
}

// plannerFor builds a planner for one file from the loaded payload and the
// file's collections.
func plannerFor(loader *workspace.Loader, snap *core.Snapshot, cfg *config.Config, fileID string, logger *slog.Logger) *mutation.Planner {
	colls := make(map[string]core.Collection)
	for id, c := range snap.Collections {
		if c.FileID == fileID {
			colls[id] = c
		}
	}
	selected := modes.Select(cfg.Selection, snap.ModeMapping, modes.KnownModeIDs(snap.Variables))

	var server *figma.Payload
	if loader != nil {
		server = loader.Payload(fileID)
	}
	return mutation.New(mutation.Config{
		Server:          server,
		Collections:     colls,
		SelectedModeIDs: selected.ModeIDs,
		Logger:          logger,
	})
}
