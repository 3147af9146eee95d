package core

import (
	"sort"
	"strings"
)

// Source tags which configured file a variable was loaded from.
type Source string

// Known sources, loaded in this order.
const (
	SourceMain      Source = "Main"
	SourceTheme     Source = "Theme"
	SourceAllColors Source = "All Colors"
)

// ParseSource maps a config string to a Source. The second return is false
// for unknown names.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "main", "":
		return SourceMain, true
	case "theme":
		return SourceTheme, true
	case "allcolors", "all-colors", "all_colors":
		return SourceAllColors, true
	default:
		return Source(s), false
	}
}

// MatchStrategy records how an alias target was linked during ingestion.
type MatchStrategy string

// Strategies in decreasing order of confidence.
const (
	// MatchByID found the target by id in the same payload.
	MatchByID MatchStrategy = "id"
	// MatchBySideTable found the target by id in variables of a previously loaded file.
	MatchBySideTable MatchStrategy = "side-table"
	// MatchByName found a variable in a previously loaded file whose last
	// path segment equals the alias owner's. Names are not unique, so this
	// link can be wrong.
	MatchByName MatchStrategy = "name"
)

// Reference links an alias to the variable it points at. It identifies the
// target only; resolved values are never stored here.
type Reference struct {
	ID             string        `json:"id"`
	FileID         string        `json:"fileId,omitempty"`
	CollectionID   string        `json:"collectionId,omitempty"`
	CollectionName string        `json:"collection,omitempty"`
	Name           string        `json:"name"`
	MatchedBy      MatchStrategy `json:"matchedBy"`
}

// Key identifies one variable value: a variable id under one mode.
type Key struct {
	ID     string
	ModeID string
}

// Variable is one (variable id, mode id) datum.
type Variable struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ModeID         string `json:"modeId"`
	ModeName       string `json:"modeName,omitempty"`
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	FileID         string `json:"fileId,omitempty"`
	Source         Source `json:"source,omitempty"`
	Description    string `json:"description,omitempty"`

	// ResolvedType is the declared type of the variable, which for an alias
	// is the type of the value it ultimately points at.
	ResolvedType ValueType `json:"resolvedType"`

	Value Value `json:"-"`
	// Display is the formatted value shown in editors.
	Display string `json:"value"`

	Reference *Reference `json:"referencedVariable,omitempty"`
}

// Key returns the (id, mode) identity of the variable.
func (v Variable) Key() Key { return Key{ID: v.ID, ModeID: v.ModeID} }

// ValueType is the type of this mode's value, VARIABLE_ALIAS for aliases.
func (v Variable) ValueType() ValueType { return v.Value.Type() }

// IsColor reports whether this mode's value is a color literal.
func (v Variable) IsColor() bool { return v.Value.IsColor() }

// DisplayName is the last "/"-separated segment of the name.
func (v Variable) DisplayName() string { return LastSegment(v.Name) }

// Path is the name without its last segment.
func (v Variable) Path() string {
	if i := strings.LastIndex(v.Name, "/"); i >= 0 {
		return v.Name[:i]
	}
	return ""
}

// WithValue returns a copy of v carrying a new value. The receiver is not
// modified.
func (v Variable) WithValue(val Value) Variable {
	out := v
	out.Value = val
	out.Display = val.Display()
	if val.Kind != KindAlias {
		out.Reference = nil
		out.ResolvedType = val.Type()
	}
	return out
}

// LastSegment returns the text after the last "/".
func LastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Mode is one value column of a collection.
type Mode struct {
	ModeID string `json:"modeId"`
	Name   string `json:"name"`
}

// Collection groups variables that share a set of modes.
type Collection struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Modes         []Mode `json:"modes"`
	DefaultModeID string `json:"defaultModeId"`
	FileID        string `json:"fileId,omitempty"`
}

// HasMode reports whether modeID is one of the collection's modes.
func (c Collection) HasMode(modeID string) bool {
	for _, m := range c.Modes {
		if m.ModeID == modeID {
			return true
		}
	}
	return false
}

// ModeIDs returns the collection's mode ids in declared order.
func (c Collection) ModeIDs() []string {
	ids := make([]string, len(c.Modes))
	for i, m := range c.Modes {
		ids[i] = m.ModeID
	}
	return ids
}

// ModeIdentifierMap maps a mode id to its "brand-grade-device-theme" key.
type ModeIdentifierMap map[string]string

// ModeIDs returns the mapped mode ids, sorted.
func (m ModeIdentifierMap) ModeIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeType distinguishes folders from variables in the tree.
type NodeType string

// Tree node types.
const (
	NodeFolder NodeType = "folder"
	NodeFile   NodeType = "file"
)

// TreeNode is one entry of the navigation tree. Folder ids are derived from
// the collection id and the folder path so they survive rebuilds.
type TreeNode struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       NodeType    `json:"type"`
	Path       string      `json:"path,omitempty"`
	IsExpanded bool        `json:"isExpanded"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *TreeNode) Walk(fn func(*TreeNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
