package normalize

import (
	"maps"

	"github.com/leapstack-labs/figvars/pkg/core"
)

// Merge combines two results, next winning on collisions: a variable value
// with the same (id, mode), a collection with the same id, or a mode with
// the same id replaces the earlier entry in place. New entries are appended.
//
// The returned keys list every variable value that was overwritten. Neither
// input is modified.
func Merge(base, next *Result) (*Result, []core.Key) {
	if base == nil {
		return next, nil
	}
	if next == nil {
		return base, nil
	}

	out := &Result{
		AllVariables: make([]core.Variable, len(base.AllVariables), len(base.AllVariables)+len(next.AllVariables)),
		ModeMapping:  make(core.ModeIdentifierMap, len(base.ModeMapping)+len(next.ModeMapping)),
		Collections:  make(map[string]core.Collection, len(base.Collections)+len(next.Collections)),
		ModeNames:    make(map[string]string, len(base.ModeNames)+len(next.ModeNames)),
		Stats:        base.Stats,
	}
	copy(out.AllVariables, base.AllVariables)
	out.Stats.add(next.Stats)

	index := make(map[core.Key]int, len(base.AllVariables))
	for i, v := range out.AllVariables {
		index[v.Key()] = i
	}

	var overwritten []core.Key
	for _, v := range next.AllVariables {
		if i, ok := index[v.Key()]; ok {
			out.AllVariables[i] = v
			overwritten = append(overwritten, v.Key())
			continue
		}
		index[v.Key()] = len(out.AllVariables)
		out.AllVariables = append(out.AllVariables, v)
	}

	maps.Copy(out.Collections, base.Collections)
	maps.Copy(out.Collections, next.Collections)
	maps.Copy(out.ModeNames, base.ModeNames)
	maps.Copy(out.ModeNames, next.ModeNames)
	maps.Copy(out.ModeMapping, base.ModeMapping)
	maps.Copy(out.ModeMapping, next.ModeMapping)

	expanded := ExpandedState(base.TreeData)
	maps.Copy(expanded, ExpandedState(next.TreeData))
	out.TreeData = BuildTree(sortedCollections(out.Collections), out.AllVariables, expanded)

	return out, overwritten
}
