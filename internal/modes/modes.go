// Package modes narrows a variable set down to the Figma modes matching a
// brand/grade/device/theme selection.
//
// Selection never hides data because of an incomplete mapping: when nothing
// matches, every known mode is returned.
package modes

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/figvars/internal/normalize"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// Selection is the user's current position on the four mode axes.
type Selection struct {
	Brand  string `koanf:"brand" json:"brand" yaml:"brand"`
	Grade  string `koanf:"grade" json:"grade" yaml:"grade"`
	Device string `koanf:"device" json:"device" yaml:"device"`
	Theme  string `koanf:"theme" json:"theme" yaml:"theme"`
}

// Key returns the mode identifier the selection would map to.
func (s Selection) Key() string {
	return normalize.ModeIdentifier(s.Brand, s.Grade, s.Device, s.Theme)
}

// IsZero reports whether no axis is set.
func (s Selection) IsZero() bool {
	return s == Selection{}
}

// Match describes how a selection was satisfied.
type Match string

// Match kinds, strongest first.
const (
	MatchExact Match = "exact"
	MatchBrand Match = "brand"
	MatchAll   Match = "all"
)

// Result is the outcome of a selection.
type Result struct {
	ModeIDs []string
	Match   Match
}

// SelectModeIDs returns the mode ids for the selection. Identifiers are
// compared case-insensitively. knownModeIDs are the ids present in the
// variable set; they are returned when neither an exact nor a brand match
// exists, together with any mapped ids.
func SelectModeIDs(brand, grade, device, theme string, mapping core.ModeIdentifierMap, knownModeIDs []string) []string {
	return Select(Selection{Brand: brand, Grade: grade, Device: device, Theme: theme}, mapping, knownModeIDs).ModeIDs
}

// Select is SelectModeIDs that also reports which rule matched.
func Select(sel Selection, mapping core.ModeIdentifierMap, knownModeIDs []string) Result {
	key := sel.Key()

	var exact []string
	for modeID, ident := range mapping {
		if strings.EqualFold(ident, key) {
			exact = append(exact, modeID)
		}
	}
	if len(exact) > 0 {
		sort.Strings(exact)
		return Result{ModeIDs: exact, Match: MatchExact}
	}

	if sel.Brand != "" {
		prefix := strings.ToLower(sel.Brand) + "-"
		var partial []string
		for modeID, ident := range mapping {
			if strings.HasPrefix(strings.ToLower(ident), prefix) {
				partial = append(partial, modeID)
			}
		}
		if len(partial) > 0 {
			sort.Strings(partial)
			return Result{ModeIDs: partial, Match: MatchBrand}
		}
	}

	return Result{ModeIDs: allModeIDs(mapping, knownModeIDs), Match: MatchAll}
}

func allModeIDs(mapping core.ModeIdentifierMap, known []string) []string {
	seen := make(map[string]bool, len(known)+len(mapping))
	var ids []string
	for _, id := range known {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range mapping.ModeIDs() {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// KnownModeIDs returns the distinct mode ids that carry at least one value.
func KnownModeIDs(vars []core.Variable) []string {
	ids := core.ModeIDsOf(vars)
	sort.Strings(ids)
	return ids
}

// FilterVariablesByMode returns the variables whose mode is in modeIDs, in
// their original order.
func FilterVariablesByMode(vars []core.Variable, modeIDs []string) []core.Variable {
	keep := make(map[string]bool, len(modeIDs))
	for _, id := range modeIDs {
		keep[id] = true
	}
	out := make([]core.Variable, 0, len(vars))
	for _, v := range vars {
		if keep[v.ModeID] {
			out = append(out, v)
		}
	}
	return out
}

// Filter selects the modes for sel and filters the snapshot's merged
// variables to them.
func Filter(s *core.Snapshot, sel Selection) ([]core.Variable, Result) {
	res := Select(sel, s.ModeMapping, KnownModeIDs(s.Variables))
	return FilterVariablesByMode(s.Variables, res.ModeIDs), res
}
