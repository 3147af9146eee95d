// Package resolve follows alias chains from a variable to the literal value it
// ultimately stands for, across collections and across loaded files.
//
// Resolution never fails loudly: missing targets and cycles come back as an
// unsuccessful result with the chain walked so far.
package resolve

import (
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/figvars/pkg/color"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// Failure messages.
const (
	MsgNotFound = "Referenced variable not found"
	MsgCycle    = "Circular reference detected"
)

// ChainFile identifies the file of a chain step.
type ChainFile struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

// ChainCollection identifies the collection of a chain step.
type ChainCollection struct {
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
}

// ReferenceChainStep is one hop of a chain, root first.
type ReferenceChainStep struct {
	File       ChainFile       `json:"file"`
	Collection ChainCollection `json:"collection"`
	Variable   core.Variable   `json:"variable"`
	IsLast     bool            `json:"isLast"`
}

// ResolvedVariableReference is the outcome of resolving one variable.
type ResolvedVariableReference struct {
	FinalVariable  *core.Variable       `json:"finalVariable,omitempty"`
	ReferenceChain []ReferenceChainStep `json:"referenceChain"`
	Success        bool                 `json:"success"`
	ErrorMessage   string               `json:"errorMessage,omitempty"`
}

// Resolver walks alias chains over a fixed set of per-file variables.
type Resolver struct {
	files     map[string]map[string][]core.Variable // file id -> variable id -> per-mode values
	fileNames map[string]string
}

// NewResolver indexes the variables of every file.
func NewResolver(allFilesVariables map[string][]core.Variable, fileNames map[string]string) *Resolver {
	r := &Resolver{
		files:     make(map[string]map[string][]core.Variable, len(allFilesVariables)),
		fileNames: fileNames,
	}
	for fileID, vars := range allFilesVariables {
		r.files[fileID] = indexByID(vars)
	}
	return r
}

func indexByID(vars []core.Variable) map[string][]core.Variable {
	idx := make(map[string][]core.Variable)
	for _, v := range vars {
		idx[v.ID] = append(idx[v.ID], v)
	}
	return idx
}

// ResolveVariableReferences resolves variableID in currentFileID. When
// allFilesVariables is nil, allVariables is used as the only file.
func ResolveVariableReferences(
	variableID, currentFileID string,
	allVariables []core.Variable,
	allFilesVariables map[string][]core.Variable,
	fileNames map[string]string,
) ResolvedVariableReference {
	files := allFilesVariables
	if _, ok := files[currentFileID]; !ok && allVariables != nil {
		files = make(map[string][]core.Variable, len(allFilesVariables)+1)
		for k, v := range allFilesVariables {
			files[k] = v
		}
		files[currentFileID] = allVariables
	}
	return NewResolver(files, fileNames).Resolve(variableID, currentFileID, "")
}

// Resolve follows the chain starting at the variable with the given id in
// fileID. When modeID is set, each hop prefers the value for that mode and
// otherwise takes the variable's first mode.
func (r *Resolver) Resolve(variableID, fileID, modeID string) ResolvedVariableReference {
	var chain []ReferenceChainStep
	visited := make(map[string]bool)

	id := variableID
	for {
		key := NodeKey(fileID, id)
		if visited[key] {
			return failure(chain, fmt.Sprintf("%s: %s", MsgCycle, id))
		}
		visited[key] = true

		v, ok := r.lookup(fileID, id, modeID)
		if !ok {
			return failure(chain, fmt.Sprintf("%s: %s", MsgNotFound, id))
		}

		chain = append(chain, ReferenceChainStep{
			File:       ChainFile{FileID: fileID, FileName: r.fileNames[fileID]},
			Collection: ChainCollection{CollectionID: v.CollectionID, CollectionName: v.CollectionName},
			Variable:   v,
		})

		nextFile, nextID, isAlias := r.next(fileID, v)
		if !isAlias {
			last := &chain[len(chain)-1]
			last.IsLast = true
			final := last.Variable
			return ResolvedVariableReference{FinalVariable: &final, ReferenceChain: chain, Success: true}
		}

		fileID, id, modeID = nextFile, nextID, v.ModeID
	}
}

// next returns the file and id an alias points at. The third return is false
// for literals and aliases without a target id.
func (r *Resolver) next(fileID string, v core.Variable) (string, string, bool) {
	if !v.Value.IsAlias() {
		return "", "", false
	}

	target := v.Value.AliasID
	if ref := v.Reference; ref != nil && ref.ID != "" {
		target = ref.ID
		if ref.FileID != "" && ref.FileID != fileID {
			if _, ok := r.files[ref.FileID]; ok {
				return ref.FileID, ref.ID, true
			}
		}
	}
	if target == "" {
		return "", "", false
	}

	// "fileId:variableId" hops to another loaded file.
	if i := strings.Index(target, ":"); i > 0 {
		if _, ok := r.files[target[:i]]; ok && target[:i] != fileID {
			return target[:i], target[i+1:], true
		}
	}
	return fileID, target, true
}

func (r *Resolver) lookup(fileID, id, modeID string) (core.Variable, bool) {
	candidates := r.files[fileID][id]
	if len(candidates) == 0 {
		return core.Variable{}, false
	}
	if modeID != "" {
		for _, c := range candidates {
			if c.ModeID == modeID {
				return c, true
			}
		}
	}
	return candidates[0], true
}

func failure(chain []ReferenceChainStep, msg string) ResolvedVariableReference {
	return ResolvedVariableReference{ReferenceChain: chain, ErrorMessage: msg}
}

// NodeKey is the file-qualified identity of a variable.
func NodeKey(fileID, id string) string {
	return fileID + "#" + id
}

// SplitNodeKey reverses NodeKey.
func SplitNodeKey(key string) (fileID, id string) {
	if i := strings.Index(key, "#"); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// FormatReferenceChain renders steps as "collection/name" hops joined by
// arrows. Steps outside currentFileID are prefixed with the file's name, or
// an abbreviation of its id when the name is unknown.
func FormatReferenceChain(steps []ReferenceChainStep, currentFileID string) string {
	hops := make([]string, 0, len(steps))
	for _, s := range steps {
		var parts []string
		if s.File.FileID != "" && s.File.FileID != currentFileID {
			parts = append(parts, fileLabel(s.File))
		}
		if s.Collection.CollectionName != "" {
			parts = append(parts, s.Collection.CollectionName)
		}
		parts = append(parts, s.Variable.Name)
		hops = append(hops, strings.Join(parts, "/"))
	}
	return strings.Join(hops, " → ")
}

func fileLabel(f ChainFile) string {
	if f.FileName != "" {
		return f.FileName
	}
	return AbbreviateFileID(f.FileID)
}

// AbbreviateFileID returns the upper-cased initials of the id's
// hyphen-separated segments: "main-theme-2024" becomes "MT2".
func AbbreviateFileID(id string) string {
	var b strings.Builder
	for _, seg := range strings.Split(id, "-") {
		if seg != "" {
			b.WriteString(strings.ToUpper(seg[:1]))
		}
	}
	if b.Len() == 0 {
		return id
	}
	return b.String()
}

// ExtractColorFromVariable returns the variable's color with rounded
// channels, or nil when it is not a color.
func ExtractColorFromVariable(v *core.Variable) *color.RGBA {
	if v == nil || !v.IsColor() {
		return nil
	}
	c := v.Value.Color
	for _, ch := range []float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(ch) || math.IsInf(ch, 0) {
			return nil
		}
	}
	return &color.RGBA{R: math.Round(c.R), G: math.Round(c.G), B: math.Round(c.B), A: c.A}
}
