package mutation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/figvars/pkg/core"
)

// EditSpec is one edit as written in an edits file. Variable and Mode name
// the variable being edited.
type EditSpec struct {
	Kind       Kind           `yaml:"kind"`
	Variable   string         `yaml:"variable"`
	File       string         `yaml:"file"`
	Mode       string         `yaml:"mode"`
	Value      any            `yaml:"value"`
	Target     string         `yaml:"target"`
	TargetFile string         `yaml:"target_file"`
	Type       string         `yaml:"type"`
	Name       string         `yaml:"name"`
	Collection string         `yaml:"collection"`
	Values     map[string]any `yaml:"values"`
}

// Edit converts the spec to a planner edit.
func (s EditSpec) Edit() Edit {
	e := Edit{
		Kind:         s.Kind,
		ModeID:       s.Mode,
		Value:        s.Value,
		TargetID:     s.Target,
		TargetFileID: s.TargetFile,
		Name:         s.Name,
		CollectionID: s.Collection,
		Values:       s.Values,
	}
	if s.Type != "" {
		e.Type = core.ParseValueType(strings.ToUpper(s.Type))
	}
	return e
}

type editsFile struct {
	Edits []EditSpec `yaml:"edits"`
}

// EditsParseError reports an invalid edits file.
type EditsParseError struct {
	Path    string
	Index   int
	Message string
}

func (e *EditsParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: edit %d: %s", e.Path, e.Index+1, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var validKinds = map[Kind]bool{
	KindValue:  true,
	KindAlias:  true,
	KindType:   true,
	KindRename: true,
	KindCreate: true,
	KindDelete: true,
}

// LoadEdits reads an edits file:
//
//	edits:
//	  - kind: value
//	    variable: VariableID:1:2
//	    mode: "1:0"
//	    value: "#ff0033"
func LoadEdits(path string) ([]EditSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading edits: %w", err)
	}
	return ParseEdits(path, data)
}

// ParseEdits parses edits file content. Unknown fields are rejected.
func ParseEdits(path string, data []byte) ([]EditSpec, error) {
	var rawMap map[string]any
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, &EditsParseError{Path: path, Index: -1, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for field := range rawMap {
		if field != "edits" {
			return nil, &EditsParseError{Path: path, Index: -1, Message: fmt.Sprintf("unknown field %q", field)}
		}
	}

	var f editsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &EditsParseError{Path: path, Index: -1, Message: fmt.Sprintf("failed to parse edits: %v", err)}
	}

	for i, s := range f.Edits {
		if s.Kind == "" {
			f.Edits[i].Kind = KindValue
			s.Kind = KindValue
		}
		if !validKinds[s.Kind] {
			return nil, &EditsParseError{Path: path, Index: i, Message: fmt.Sprintf("invalid kind %q", s.Kind)}
		}
		if s.Variable == "" && s.Kind != KindCreate {
			return nil, &EditsParseError{Path: path, Index: i, Message: "variable is required"}
		}
		if s.Kind == KindAlias && s.Target == "" {
			return nil, &EditsParseError{Path: path, Index: i, Message: "target is required for alias edits"}
		}
	}
	return f.Edits, nil
}
