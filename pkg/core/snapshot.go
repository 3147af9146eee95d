package core

import "sort"

// FileInfo describes one loaded Figma file.
type FileInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source Source `json:"source"`
}

// Snapshot is an immutable view of every loaded file. A reload builds a new
// Snapshot with a higher Version; consumers never modify one in place.
type Snapshot struct {
	Version uint64
	Files   []FileInfo

	// ByFile holds each file's own variables, keyed by file id.
	ByFile map[string][]Variable
	// Variables is the merged working set across files, later files winning
	// on (id, mode) collisions.
	Variables   []Variable
	Collections map[string]Collection
	ModeNames   map[string]string
	ModeMapping ModeIdentifierMap
	Tree        []*TreeNode
}

// FileNames maps file ids to their configured names.
func (s *Snapshot) FileNames() map[string]string {
	names := make(map[string]string, len(s.Files))
	for _, f := range s.Files {
		names[f.ID] = f.Name
	}
	return names
}

// ModeIDs returns every mode id that has at least one variable value, in
// first-seen order.
func (s *Snapshot) ModeIDs() []string {
	return ModeIDsOf(s.Variables)
}

// Find returns the variable with the id and mode from the merged set.
func (s *Snapshot) Find(id, modeID string) (Variable, bool) {
	for _, v := range s.Variables {
		if v.ID == id && v.ModeID == modeID {
			return v, true
		}
	}
	return Variable{}, false
}

// Lookup returns every mode's value for the variable id, in stored order.
func (s *Snapshot) Lookup(id string) []Variable {
	var out []Variable
	for _, v := range s.Variables {
		if v.ID == id {
			out = append(out, v)
		}
	}
	return out
}

// CollectionByName returns the first collection with the name, by id order.
func (s *Snapshot) CollectionByName(name string) (Collection, bool) {
	ids := make([]string, 0, len(s.Collections))
	for id := range s.Collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s.Collections[id].Name == name {
			return s.Collections[id], true
		}
	}
	return Collection{}, false
}

// ModeIDsOf returns the distinct mode ids of vars in first-seen order.
func ModeIDsOf(vars []Variable) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, v := range vars {
		if !seen[v.ModeID] {
			seen[v.ModeID] = true
			ids = append(ids, v.ModeID)
		}
	}
	return ids
}
