package mutation

import (
	"fmt"
	"sync"

	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

// Pending is an edit waiting to be sent, with the variable it was made on.
type Pending struct {
	Variable core.Variable
	Edit     Edit
}

// sessionKey identifies a slot in an EditSession. Value and alias edits share
// the (id, mode) slot; variable-level kinds get one slot per kind and no mode.
type sessionKey struct {
	core.Key
	Kind Kind
}

func keyOf(v core.Variable, e Edit) sessionKey {
	switch e.Kind {
	case KindValue, "", KindAlias:
		return sessionKey{Key: core.Key{ID: v.ID, ModeID: modeOf(v, e)}}
	default:
		return sessionKey{Key: core.Key{ID: v.ID}, Kind: e.Kind}
	}
}

// EditSession collects in-flight edits. Value and alias edits are keyed by
// (variable id, mode id); renames, type changes, deletes and creates are
// keyed by (variable id, kind). A later edit of the same key replaces the
// earlier one but keeps its position.
type EditSession struct {
	mu    sync.Mutex
	edits map[sessionKey]Pending
	order []sessionKey
}

// NewEditSession returns an empty session.
func NewEditSession() *EditSession {
	return &EditSession{edits: make(map[sessionKey]Pending)}
}

// Set records e as the latest edit of its key.
func (s *EditSession) Set(v core.Variable, e Edit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(v, e)
	if _, ok := s.edits[k]; !ok {
		s.order = append(s.order, k)
	}
	s.edits[k] = Pending{Variable: v, Edit: e}
}

// Get returns the pending value or alias edit of the variable in modeID.
func (s *EditSession) Get(variableID, modeID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.edits[sessionKey{Key: core.Key{ID: variableID, ModeID: modeID}}]
	return p, ok
}

// GetKind returns the pending variable-level edit of the given kind.
func (s *EditSession) GetKind(variableID string, kind Kind) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.edits[sessionKey{Key: core.Key{ID: variableID}, Kind: kind}]
	return p, ok
}

// Delete drops the pending value or alias edit of the variable in modeID.
func (s *EditSession) Delete(variableID, modeID string) {
	s.drop(sessionKey{Key: core.Key{ID: variableID, ModeID: modeID}})
}

// DeleteKind drops the pending variable-level edit of the given kind.
func (s *EditSession) DeleteKind(variableID string, kind Kind) {
	s.drop(sessionKey{Key: core.Key{ID: variableID}, Kind: kind})
}

func (s *EditSession) drop(k sessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edits[k]; !ok {
		return
	}
	delete(s.edits, k)
	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of pending edits.
func (s *EditSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Pending returns the pending edits in the order they were first made.
func (s *EditSession) Pending() []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Pending, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.edits[k])
	}
	return out
}

// Clear drops every pending edit.
func (s *EditSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = make(map[sessionKey]Pending)
	s.order = nil
}

// Flush plans every pending edit into one payload. The session is cleared
// only when all edits planned; on error nothing is dropped.
func (p *Planner) Flush(s *EditSession) (*figma.PostPayload, error) {
	payload := &figma.PostPayload{}
	for _, pending := range s.Pending() {
		frag, err := p.Plan(pending.Variable, pending.Edit)
		if err != nil {
			return nil, fmt.Errorf("planning %s edit of %s: %w", pending.Edit.Kind, pending.Variable.ID, err)
		}
		payload.Append(frag)
	}
	s.Clear()
	return payload, nil
}
