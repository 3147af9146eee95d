package resolve

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/figvars/internal/dag"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// BuildAliasGraph links every alias to its target across all files. Targets
// that are not loaded get no node.
func (r *Resolver) BuildAliasGraph() *dag.Graph {
	g := dag.NewGraph()

	fileIDs := make([]string, 0, len(r.files))
	for fileID := range r.files {
		fileIDs = append(fileIDs, fileID)
	}
	sort.Strings(fileIDs)

	for _, fileID := range fileIDs {
		for id, vars := range r.files[fileID] {
			g.AddNode(NodeKey(fileID, id), vars[0])
		}
	}
	for _, fileID := range fileIDs {
		for id, vars := range r.files[fileID] {
			for _, v := range vars {
				nextFile, nextID, ok := r.next(fileID, v)
				if !ok {
					continue
				}
				_ = g.AddEdge(NodeKey(nextFile, nextID), NodeKey(fileID, id))
			}
		}
	}
	return g
}

type viewKey struct {
	fileID, id, modeID string
}

// View memoizes resolutions over one snapshot. Cached results are dropped
// wholesale when the snapshot version changes, and per dependency when a
// local edit is applied.
type View struct {
	mu       sync.Mutex
	version  uint64
	byFile   map[string][]core.Variable
	names    map[string]string
	resolver *Resolver
	graph    *dag.Graph
	cache    map[viewKey]ResolvedVariableReference
}

// NewView builds a view over the snapshot.
func NewView(s *core.Snapshot) *View {
	v := &View{}
	v.reset(s)
	return v
}

func (v *View) reset(s *core.Snapshot) {
	v.version = s.Version
	v.byFile = make(map[string][]core.Variable, len(s.ByFile))
	for fileID, vars := range s.ByFile {
		v.byFile[fileID] = vars
	}
	if len(v.byFile) == 0 && len(s.Variables) > 0 {
		v.byFile[""] = s.Variables
	}
	v.names = s.FileNames()
	v.rebuild()
}

func (v *View) rebuild() {
	v.resolver = NewResolver(v.byFile, v.names)
	v.graph = v.resolver.BuildAliasGraph()
	v.cache = make(map[viewKey]ResolvedVariableReference)
}

// Version is the snapshot version the view was built from.
func (v *View) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Sync rebuilds the view if s is a different snapshot version. It reports
// whether a rebuild happened.
func (v *View) Sync(s *core.Snapshot) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s.Version == v.version {
		return false
	}
	v.reset(s)
	return true
}

// Resolve returns the memoized resolution of a variable in a mode.
func (v *View) Resolve(fileID, id, modeID string) ResolvedVariableReference {
	v.mu.Lock()
	defer v.mu.Unlock()

	k := viewKey{fileID: fileID, id: id, modeID: modeID}
	if res, ok := v.cache[k]; ok {
		return res
	}
	res := v.resolver.Resolve(id, fileID, modeID)
	v.cache[k] = res
	return res
}

// Cached reports how many resolutions are memoized.
func (v *View) Cached() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.cache)
}

// Apply overlays an edited variable value on the view without touching the
// snapshot, and drops cached results of every variable depending on it. It
// returns the file-qualified keys that were invalidated.
func (v *View) Apply(edited core.Variable) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	fileID := edited.FileID
	if _, ok := v.byFile[fileID]; !ok {
		if _, ok := v.byFile[""]; ok {
			fileID = ""
		}
	}

	before := v.graph.GetAffectedNodes([]string{NodeKey(fileID, edited.ID)})

	vars := v.byFile[fileID]
	updated := make([]core.Variable, 0, len(vars)+1)
	replaced := false
	for _, existing := range vars {
		if existing.ID == edited.ID && existing.ModeID == edited.ModeID {
			updated = append(updated, edited)
			replaced = true
			continue
		}
		updated = append(updated, existing)
	}
	if !replaced {
		updated = append(updated, edited)
	}
	v.byFile[fileID] = updated

	cache := v.cache
	v.resolver = NewResolver(v.byFile, v.names)
	v.graph = v.resolver.BuildAliasGraph()
	v.cache = cache

	after := v.graph.GetAffectedNodes([]string{NodeKey(fileID, edited.ID)})
	affected := union(before, after)
	v.invalidate(affected)
	return affected
}

// Invalidate drops cached results for the given file-qualified keys and
// everything that depends on them.
func (v *View) Invalidate(keys ...string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	affected := v.graph.GetAffectedNodes(keys)
	v.invalidate(affected)
	return affected
}

func (v *View) invalidate(keys []string) {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	for k := range v.cache {
		if drop[NodeKey(k.fileID, k.id)] {
			delete(v.cache, k)
		}
	}
}

// Cycles returns every alias cycle as file-qualified keys in alias order:
// each key aliases the next, and the last repeats the first.
func (v *View) Cycles() [][]string {
	v.mu.Lock()
	defer v.mu.Unlock()

	cycles := v.graph.Cycles()
	for _, c := range cycles {
		for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
			c[i], c[j] = c[j], c[i]
		}
	}
	return cycles
}

// Dependents returns the keys of every alias that transitively points at
// the variable, excluding the variable itself.
func (v *View) Dependents(fileID, id string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	self := NodeKey(fileID, id)
	var out []string
	for _, k := range v.graph.GetAffectedNodes([]string{self}) {
		if k != self {
			out = append(out, k)
		}
	}
	return out
}

// Dependencies returns the keys of every variable the variable transitively aliases.
func (v *View) Dependencies(fileID, id string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph.GetUpstreamNodes(NodeKey(fileID, id))
}

// Stats returns the alias graph's node and edge counts.
func (v *View) Stats() (nodes, edges int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph.NodeCount(), v.graph.EdgeCount()
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
