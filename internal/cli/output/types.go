package output

// VariableRow is one (variable, mode) entry in JSON listings.
type VariableRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Collection string `json:"collection"`
	ModeID     string `json:"modeId"`
	ModeName   string `json:"modeName,omitempty"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	FileID     string `json:"fileId,omitempty"`
	AliasOf    string `json:"aliasOf,omitempty"`
}

// ListOutput is the JSON shape of the list command.
type ListOutput struct {
	Match     string        `json:"match"`
	ModeIDs   []string      `json:"modeIds"`
	Total     int           `json:"total"`
	Variables []VariableRow `json:"variables"`
}

// ModeInfo describes one mode.
type ModeInfo struct {
	ModeID     string `json:"modeId"`
	Name       string `json:"name"`
	Collection string `json:"collection"`
	Identifier string `json:"identifier,omitempty"`
	Selected   bool   `json:"selected"`
}

// ModesOutput is the JSON shape of the modes command.
type ModesOutput struct {
	Selection string     `json:"selection,omitempty"`
	Match     string     `json:"match"`
	Modes     []ModeInfo `json:"modes"`
}

// FileSummary describes one loaded file.
type FileSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Source    string `json:"source"`
	Variables int    `json:"variables"`
}

// StatusOutput is the JSON shape of the status command.
type StatusOutput struct {
	Version     uint64        `json:"version"`
	Files       []FileSummary `json:"files"`
	Variables   int           `json:"variables"`
	Collections int           `json:"collections"`
	AliasNodes  int           `json:"aliasNodes"`
	AliasEdges  int           `json:"aliasEdges"`
	Cycles      int           `json:"cycles"`
	Unresolved  int           `json:"unresolved"`
	NameMatches int           `json:"nameMatches"`
}

// CyclesOutput is the JSON shape of the cycles command.
type CyclesOutput struct {
	Cycles [][]string `json:"cycles"`
}
