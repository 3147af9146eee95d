package figma

// Action is the kind of change in a POST variables request.
type Action string

// Actions accepted by the variables endpoint.
const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// VariableChange creates, updates or deletes a variable definition.
type VariableChange struct {
	Action               Action `json:"action"`
	ID                   string `json:"id"`
	VariableCollectionID string `json:"variableCollectionId,omitempty"`
	Name                 string `json:"name,omitempty"`
	ResolvedType         string `json:"resolvedType,omitempty"`
}

// ModeValue sets one mode's value of a variable.
type ModeValue struct {
	VariableID string `json:"variableId"`
	ModeID     string `json:"modeId"`
	Value      any    `json:"value"`
}

// PostPayload is the body of a POST variables request.
type PostPayload struct {
	Variables          []VariableChange `json:"variables,omitempty"`
	VariableModeValues []ModeValue      `json:"variableModeValues,omitempty"`
}

// Append adds other's changes after p's.
func (p *PostPayload) Append(other *PostPayload) {
	if other == nil {
		return
	}
	p.Variables = append(p.Variables, other.Variables...)
	p.VariableModeValues = append(p.VariableModeValues, other.VariableModeValues...)
}

// Empty reports whether the payload carries no changes.
func (p *PostPayload) Empty() bool {
	return p == nil || (len(p.Variables) == 0 && len(p.VariableModeValues) == 0)
}
