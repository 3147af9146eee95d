// Package normalize turns a raw Figma variables payload into the core model:
// one Variable per (variable, mode), a folder tree built from "/"-separated
// names, and the mode-identifier map used for brand/theme filtering.
//
// Normalization is pure: it performs no I/O and never mutates its input.
package normalize

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

// Options controls a single Normalize call.
type Options struct {
	// FileID is the Figma file the payload was fetched from.
	FileID string
	// Source tags the provenance of every variable. Theme-sourced payloads
	// also populate the mode-identifier map.
	Source core.Source
	// SideTable holds variables from previously loaded files, used to link
	// aliases that point outside this payload.
	SideTable []core.Variable
	// Expanded carries UI expansion state by tree node id.
	Expanded map[string]bool
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Stats counts what a normalize pass did.
type Stats struct {
	Collections       int
	HiddenCollections int
	Variables         int
	SkippedNoModes    int
	IDMatches         int
	SideTableMatches  int
	NameMatches       int
	Unresolved        int
}

func (s *Stats) add(o Stats) {
	s.Collections += o.Collections
	s.HiddenCollections += o.HiddenCollections
	s.Variables += o.Variables
	s.SkippedNoModes += o.SkippedNoModes
	s.IDMatches += o.IDMatches
	s.SideTableMatches += o.SideTableMatches
	s.NameMatches += o.NameMatches
	s.Unresolved += o.Unresolved
}

// Result is the normalized form of one or more payloads.
type Result struct {
	AllVariables []core.Variable
	TreeData     []*core.TreeNode
	ModeMapping  core.ModeIdentifierMap
	Collections  map[string]core.Collection
	ModeNames    map[string]string
	Stats        Stats
}

// Normalize converts a raw payload into variables, a tree and a mode map.
// Collections hidden from publishing are dropped along with their variables.
// Alias targets that cannot be found leave Reference nil.
func Normalize(payload *figma.Payload, opts Options) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("nil variables payload")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Source == "" {
		opts.Source = core.SourceMain
	}

	n := &normalizer{
		opts:        opts,
		logger:      logger,
		collections: make(map[string]core.Collection),
		raw:         make(map[string]figma.Variable),
		result: &Result{
			ModeMapping: make(core.ModeIdentifierMap),
			ModeNames:   make(map[string]string),
		},
	}

	if err := n.registerCollections(payload.Meta.VariableCollections); err != nil {
		return nil, err
	}
	n.buildVariables(payload.Meta.Variables)

	n.result.Collections = n.collections
	n.result.TreeData = BuildTree(sortedCollections(n.collections), n.result.AllVariables, opts.Expanded)

	logger.Debug("normalized payload",
		"file_id", opts.FileID,
		"source", string(opts.Source),
		"collections", n.result.Stats.Collections,
		"hidden_collections", n.result.Stats.HiddenCollections,
		"variables", n.result.Stats.Variables,
		"name_matches", n.result.Stats.NameMatches,
		"unresolved", n.result.Stats.Unresolved)

	return n.result, nil
}

type normalizer struct {
	opts        Options
	logger      *slog.Logger
	collections map[string]core.Collection
	raw         map[string]figma.Variable // surviving raw variables by id
	result      *Result
}

func (n *normalizer) registerCollections(raw map[string]figma.Collection) error {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rc := raw[id]
		if rc.HiddenFromPublishing {
			n.result.Stats.HiddenCollections++
			n.logger.Debug("skipping hidden collection", "collection", rc.Name)
			continue
		}
		if rc.ID == "" {
			rc.ID = id
		}

		c := core.Collection{
			ID:            rc.ID,
			Name:          rc.Name,
			DefaultModeID: rc.DefaultModeID,
			FileID:        n.opts.FileID,
			Modes:         make([]core.Mode, 0, len(rc.Modes)),
		}
		for _, m := range rc.Modes {
			c.Modes = append(c.Modes, core.Mode{ModeID: m.ModeID, Name: m.Name})
			n.result.ModeNames[m.ModeID] = m.Name

			if n.opts.Source == core.SourceTheme {
				brand, theme := ParseModeName(m.Name)
				n.result.ModeMapping[m.ModeID] = ModeIdentifier(brand, DefaultGrade, DefaultDevice, theme)
			}
		}
		if !c.HasMode(c.DefaultModeID) {
			return fmt.Errorf("collection %q: default mode %q is not one of its modes", c.Name, c.DefaultModeID)
		}

		n.collections[c.ID] = c
		n.result.Stats.Collections++
	}
	return nil
}

func (n *normalizer) buildVariables(raw map[string]figma.Variable) {
	ids := make([]string, 0, len(raw))
	for id, rv := range raw {
		if _, ok := n.collections[rv.VariableCollectionID]; ok {
			ids = append(ids, id)
			if rv.ID == "" {
				rv.ID = id
			}
			n.raw[id] = rv
		}
	}
	sort.Strings(ids)

	var out []core.Variable
	for _, id := range ids {
		rv := n.raw[id]
		if len(rv.ValuesByMode) == 0 {
			n.result.Stats.SkippedNoModes++
			continue
		}
		coll := n.collections[rv.VariableCollectionID]

		for _, modeID := range orderedModes(coll, rv.ValuesByMode) {
			val := rv.ValuesByMode[modeID].Value
			v := core.Variable{
				ID:             rv.ID,
				Name:           rv.Name,
				ModeID:         modeID,
				ModeName:       n.result.ModeNames[modeID],
				CollectionID:   coll.ID,
				CollectionName: coll.Name,
				FileID:         n.opts.FileID,
				Source:         n.opts.Source,
				Description:    rv.Description,
				ResolvedType:   core.ParseValueType(rv.ResolvedType),
				Value:          val,
				Display:        val.Display(),
			}
			if val.IsAlias() {
				v.Reference = n.link(rv, val)
				if v.Reference != nil {
					v.Display = v.Reference.Name
				}
			}
			out = append(out, v)
		}
		n.result.Stats.Variables++
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CollectionName != b.CollectionName {
			return a.CollectionName < b.CollectionName
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	n.result.AllVariables = out
}

// link finds the alias target: by id in this payload, then by id in the
// side table, then by last name segment in the side table.
func (n *normalizer) link(owner figma.Variable, val core.Value) *core.Reference {
	if target, ok := n.raw[val.AliasID]; ok {
		coll := n.collections[target.VariableCollectionID]
		n.result.Stats.IDMatches++
		return &core.Reference{
			ID:             target.ID,
			FileID:         n.opts.FileID,
			CollectionID:   coll.ID,
			CollectionName: coll.Name,
			Name:           target.Name,
			MatchedBy:      core.MatchByID,
		}
	}

	for _, sv := range n.opts.SideTable {
		if sv.ID == val.AliasID {
			n.result.Stats.SideTableMatches++
			return referenceTo(sv, core.MatchBySideTable)
		}
	}

	leaf := core.LastSegment(owner.Name)
	for _, sv := range n.opts.SideTable {
		if sv.ID != owner.ID && sv.DisplayName() == leaf {
			n.result.Stats.NameMatches++
			n.logger.Debug("linked alias by name",
				"variable", owner.Name, "alias_id", val.AliasID, "target_id", sv.ID, "target_file", sv.FileID)
			return referenceTo(sv, core.MatchByName)
		}
	}

	n.result.Stats.Unresolved++
	n.logger.Debug("alias target not found", "variable", owner.Name, "alias_id", val.AliasID)
	return nil
}

func referenceTo(v core.Variable, by core.MatchStrategy) *core.Reference {
	return &core.Reference{
		ID:             v.ID,
		FileID:         v.FileID,
		CollectionID:   v.CollectionID,
		CollectionName: v.CollectionName,
		Name:           v.Name,
		MatchedBy:      by,
	}
}

// orderedModes returns the value's mode ids in collection order, followed by
// any modes the collection does not declare, sorted.
func orderedModes(c core.Collection, values map[string]figma.RawValue) []string {
	ids := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, m := range c.Modes {
		if _, ok := values[m.ModeID]; ok {
			ids = append(ids, m.ModeID)
			seen[m.ModeID] = true
		}
	}
	var extra []string
	for id := range values {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

func sortedCollections(m map[string]core.Collection) []core.Collection {
	out := make([]core.Collection, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
