// Package mutation turns edit intents into Figma POST variables payloads.
// Planning never performs I/O; the caller sends the payload.
package mutation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

// ErrCollectionNotFound is returned when the owning collection of a variable
// cannot be determined. No payload is produced in that case.
var ErrCollectionNotFound = errors.New("Could not find variable collection ID") //nolint:staticcheck // user-facing message

// TempIDPrefix prefixes the client-side id of a variable being created.
const TempIDPrefix = "temp-variable-"

// Kind is the kind of edit.
type Kind string

// Edit kinds.
const (
	KindValue  Kind = "value"
	KindAlias  Kind = "alias"
	KindType   Kind = "type"
	KindRename Kind = "rename"
	KindCreate Kind = "create"
	KindDelete Kind = "delete"
)

// Edit is one user intent against a variable.
type Edit struct {
	Kind Kind
	// ModeID is the mode being edited. Defaults to the variable's mode.
	ModeID string
	// Value is the new literal, as typed or stored: text, number, bool,
	// color.RGBA or core.Value.
	Value any
	// TargetID and TargetFileID name the variable an alias edit points at.
	TargetID     string
	TargetFileID string
	// Type is the new type for type edits and creates.
	Type core.ValueType
	// Name is the new name for renames and creates.
	Name string
	// CollectionID is the collection a create targets.
	CollectionID string
	// Values holds explicitly set per-mode values of a create.
	Values map[string]any
}

// Config configures a Planner.
type Config struct {
	// Server is the last payload fetched for the file being edited.
	Server *figma.Payload
	// Collections are the normalized collections of the file.
	Collections map[string]core.Collection
	// SelectedModeIDs are the modes currently shown to the user.
	SelectedModeIDs []string
	Now             func() time.Time
	Logger          *slog.Logger
}

// Planner builds POST payloads for edits.
type Planner struct {
	server      *figma.Payload
	collections map[string]core.Collection
	selected    []string
	now         func() time.Time
	logger      *slog.Logger

	mu     sync.Mutex
	lastID int64
}

// New creates a Planner.
func New(cfg Config) *Planner {
	p := &Planner{
		server:      cfg.Server,
		collections: cfg.Collections,
		selected:    cfg.SelectedModeIDs,
		now:         cfg.Now,
		logger:      cfg.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Plan returns the payload fragment for applying e to v.
func (p *Planner) Plan(v core.Variable, e Edit) (*figma.PostPayload, error) {
	switch e.Kind {
	case KindValue, "":
		return p.planValue(v, e), nil
	case KindAlias:
		return p.planAlias(v, e)
	case KindType:
		return p.planType(v, e)
	case KindRename:
		return p.planRename(v, e)
	case KindCreate:
		return p.planCreate(v, e)
	case KindDelete:
		return p.planDelete(v)
	default:
		return nil, fmt.Errorf("unknown edit kind %q", e.Kind)
	}
}

// Preview returns v as it would look after e, for optimistic display. The
// second result is false for edits that do not change a single mode's value.
func (p *Planner) Preview(v core.Variable, e Edit) (core.Variable, bool) {
	if e.ModeID != "" && e.ModeID != v.ModeID {
		return v, false
	}
	switch e.Kind {
	case KindValue, "":
		return v.WithValue(CoerceValue(literalType(v, e.Type), e.Value, v.Value)), true
	case KindAlias:
		if e.TargetID == "" {
			return v, false
		}
		out := v.WithValue(core.AliasValue(e.TargetID, ""))
		out.Reference = &core.Reference{ID: e.TargetID, FileID: e.TargetFileID, MatchedBy: core.MatchByID}
		return out, true
	default:
		return v, false
	}
}

func (p *Planner) planValue(v core.Variable, e Edit) *figma.PostPayload {
	val := CoerceValue(literalType(v, e.Type), e.Value, v.Value)
	p.logger.Debug("planned value edit", "variable", v.ID, "mode", modeOf(v, e), "type", val.Type())
	return &figma.PostPayload{
		VariableModeValues: []figma.ModeValue{{
			VariableID: v.ID,
			ModeID:     modeOf(v, e),
			Value:      figma.EncodeValue(val),
		}},
	}
}

func (p *Planner) planAlias(v core.Variable, e Edit) (*figma.PostPayload, error) {
	if e.TargetID == "" {
		return nil, fmt.Errorf("alias edit of %s: missing target id", v.ID)
	}
	fileKey := ""
	if e.TargetFileID != "" && e.TargetFileID != v.FileID {
		fileKey = e.TargetFileID
	}
	p.logger.Debug("planned alias edit", "variable", v.ID, "target", e.TargetID, "file", fileKey)
	return &figma.PostPayload{
		VariableModeValues: []figma.ModeValue{{
			VariableID: v.ID,
			ModeID:     modeOf(v, e),
			Value:      figma.EncodeValue(core.AliasValue(e.TargetID, fileKey)),
		}},
	}, nil
}

func (p *Planner) planType(v core.Variable, e Edit) (*figma.PostPayload, error) {
	if e.Type == "" || e.Type == core.TypeAlias {
		return nil, fmt.Errorf("type edit of %s: invalid type %q", v.ID, e.Type)
	}
	collectionID, err := p.CollectionID(v)
	if err != nil {
		return nil, err
	}

	raw := e.Value
	if raw == nil && !v.Value.IsAlias() && v.Value.Type() == e.Type {
		raw = v.Value
	}
	val := CoerceValue(e.Type, raw, core.Value{})

	return &figma.PostPayload{
		Variables: []figma.VariableChange{{
			Action:               figma.ActionUpdate,
			ID:                   v.ID,
			VariableCollectionID: collectionID,
			ResolvedType:         string(e.Type),
		}},
		VariableModeValues: []figma.ModeValue{{
			VariableID: v.ID,
			ModeID:     modeOf(v, e),
			Value:      figma.EncodeValue(val),
		}},
	}, nil
}

func (p *Planner) planRename(v core.Variable, e Edit) (*figma.PostPayload, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("rename of %s: empty name", v.ID)
	}
	collectionID, err := p.CollectionID(v)
	if err != nil {
		return nil, err
	}
	return &figma.PostPayload{
		Variables: []figma.VariableChange{{
			Action:               figma.ActionUpdate,
			ID:                   v.ID,
			VariableCollectionID: collectionID,
			Name:                 e.Name,
		}},
	}, nil
}

// planCreate fills every mode of the target collection. Modes without an
// explicit value get the primary value.
func (p *Planner) planCreate(v core.Variable, e Edit) (*figma.PostPayload, error) {
	collectionID := e.CollectionID
	if collectionID == "" {
		collectionID = v.CollectionID
	}
	if collectionID == "" {
		return nil, fmt.Errorf("create %q: %w", e.Name, ErrCollectionNotFound)
	}

	name := e.Name
	if name == "" {
		name = v.Name
	}
	if name == "" {
		return nil, fmt.Errorf("create in %s: empty name", collectionID)
	}

	typ := literalType(v, e.Type)
	primary := CoerceValue(typ, p.primaryRaw(collectionID, v, e), v.Value)
	id := p.tempID()

	payload := &figma.PostPayload{
		Variables: []figma.VariableChange{{
			Action:               figma.ActionCreate,
			ID:                   id,
			VariableCollectionID: collectionID,
			Name:                 name,
			ResolvedType:         string(typ),
		}},
	}
	for _, modeID := range p.createModes(collectionID, v, e) {
		val := primary
		if raw, ok := e.Values[modeID]; ok {
			val = CoerceValue(typ, raw, primary)
		}
		payload.VariableModeValues = append(payload.VariableModeValues, figma.ModeValue{
			VariableID: id,
			ModeID:     modeID,
			Value:      figma.EncodeValue(val),
		})
	}

	p.logger.Debug("planned create", "id", id, "collection", collectionID, "modes", len(payload.VariableModeValues))
	return payload, nil
}

// primaryRaw is the value modes without an explicit one start from: the
// create's own value, else the explicit value of the collection's default
// mode, the create's mode, or the first explicitly set mode.
func (p *Planner) primaryRaw(collectionID string, v core.Variable, e Edit) any {
	if e.Value != nil || len(e.Values) == 0 {
		return e.Value
	}
	var candidates []string
	if c, ok := p.collection(collectionID); ok {
		candidates = append(candidates, c.DefaultModeID)
	}
	candidates = append(candidates, modeOf(v, e))
	for _, id := range candidates {
		if raw, ok := e.Values[id]; ok {
			return raw
		}
	}
	return e.Values[sortedKeys(e.Values)[0]]
}

// createModes lists the modes a new variable needs values for: the
// collection's modes when it is known, otherwise the default, selected and
// explicitly set modes.
func (p *Planner) createModes(collectionID string, v core.Variable, e Edit) []string {
	if c, ok := p.collection(collectionID); ok && len(c.Modes) > 0 {
		return c.ModeIDs()
	}

	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(modeOf(v, e))
	for _, id := range p.selected {
		add(id)
	}
	explicit := make([]string, 0, len(e.Values))
	for id := range e.Values {
		explicit = append(explicit, id)
	}
	sort.Strings(explicit)
	for _, id := range explicit {
		add(id)
	}
	return ids
}

func (p *Planner) collection(id string) (core.Collection, bool) {
	if c, ok := p.collections[id]; ok {
		return c, true
	}
	if p.server == nil {
		return core.Collection{}, false
	}
	raw, ok := p.server.Meta.VariableCollections[id]
	if !ok {
		return core.Collection{}, false
	}
	c := core.Collection{ID: raw.ID, Name: raw.Name, DefaultModeID: raw.DefaultModeID}
	for _, m := range raw.Modes {
		c.Modes = append(c.Modes, core.Mode{ModeID: m.ModeID, Name: m.Name})
	}
	return c, true
}

func (p *Planner) planDelete(v core.Variable) (*figma.PostPayload, error) {
	collectionID, err := p.CollectionID(v)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("planned delete", "variable", v.ID, "collection", collectionID)
	return &figma.PostPayload{
		Variables: []figma.VariableChange{{
			Action:               figma.ActionDelete,
			ID:                   v.ID,
			VariableCollectionID: collectionID,
		}},
	}, nil
}

// CollectionID finds the collection owning v in the server payload: by the
// variable's id first, then by collection name, then by a variable of the
// same name.
func (p *Planner) CollectionID(v core.Variable) (string, error) {
	if p.server != nil {
		meta := p.server.Meta
		if raw, ok := meta.Variables[v.ID]; ok && raw.VariableCollectionID != "" {
			return raw.VariableCollectionID, nil
		}

		if v.CollectionName != "" {
			for _, id := range sortedKeys(meta.VariableCollections) {
				if meta.VariableCollections[id].Name == v.CollectionName {
					p.logger.Debug("collection found by name", "variable", v.ID, "collection", id)
					return id, nil
				}
			}
		}
		if v.Name != "" {
			for _, id := range sortedKeys(meta.Variables) {
				raw := meta.Variables[id]
				if raw.Name == v.Name && raw.VariableCollectionID != "" {
					p.logger.Debug("collection found by variable name", "variable", v.ID, "collection", raw.VariableCollectionID)
					return raw.VariableCollectionID, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: variable %s", ErrCollectionNotFound, v.ID)
}

func (p *Planner) tempID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ms := p.now().UnixMilli()
	if ms <= p.lastID {
		ms = p.lastID + 1
	}
	p.lastID = ms
	return fmt.Sprintf("%s%d", TempIDPrefix, ms)
}

func modeOf(v core.Variable, e Edit) string {
	if e.ModeID != "" {
		return e.ModeID
	}
	return v.ModeID
}

// literalType picks the type a literal edit is coerced to: the explicit type,
// then the variable's declared type, then its current value's type.
func literalType(v core.Variable, explicit core.ValueType) core.ValueType {
	for _, t := range []core.ValueType{explicit, v.ResolvedType, v.Value.Type()} {
		if t != "" && t != core.TypeAlias {
			return t
		}
	}
	return core.TypeString
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
