// Package figma defines the wire shapes of the Figma variables REST API:
// the GET /v1/files/:key/variables/local response and the POST
// /v1/files/:key/variables request body.
package figma

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/figvars/pkg/color"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// AliasType is the "type" of an alias value object.
const AliasType = "VARIABLE_ALIAS"

// Payload is the response of the local variables endpoint.
type Payload struct {
	Status int  `json:"status,omitempty"`
	Error  bool `json:"error,omitempty"`
	Meta   Meta `json:"meta"`
}

// Meta holds the collections and variables of a file, keyed by id.
type Meta struct {
	VariableCollections map[string]Collection `json:"variableCollections"`
	Variables           map[string]Variable   `json:"variables"`
}

// Collection is a raw variable collection.
type Collection struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Key                  string   `json:"key,omitempty"`
	Modes                []Mode   `json:"modes"`
	DefaultModeID        string   `json:"defaultModeId"`
	Remote               bool     `json:"remote,omitempty"`
	HiddenFromPublishing bool     `json:"hiddenFromPublishing,omitempty"`
	VariableIDs          []string `json:"variableIds,omitempty"`
}

// Mode is a raw collection mode.
type Mode struct {
	ModeID string `json:"modeId"`
	Name   string `json:"name"`
}

// Variable is a raw variable with one value per mode.
type Variable struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Key                  string              `json:"key,omitempty"`
	VariableCollectionID string              `json:"variableCollectionId"`
	ResolvedType         string              `json:"resolvedType"`
	ValuesByMode         map[string]RawValue `json:"valuesByMode"`
	Remote               bool                `json:"remote,omitempty"`
	Description          string              `json:"description,omitempty"`
	HiddenFromPublishing bool                `json:"hiddenFromPublishing,omitempty"`
	Scopes               []string            `json:"scopes,omitempty"`
}

// Decode reads a Payload from JSON.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode variables payload: %w", err)
	}
	return &p, nil
}

// Unmarshal parses a Payload from JSON bytes.
func Unmarshal(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode variables payload: %w", err)
	}
	return &p, nil
}

// RawValue is one mode's value, decoded into the core tagged union.
type RawValue struct {
	core.Value
}

type rawObject struct {
	Type string   `json:"type"`
	ID   string   `json:"id"`
	R    *float64 `json:"r"`
	G    *float64 `json:"g"`
	B    *float64 `json:"b"`
	A    *float64 `json:"a"`
}

// UnmarshalJSON classifies the value by its JSON shape. Objects that are
// neither aliases nor colors are kept as their JSON text.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}

	switch t := x.(type) {
	case bool:
		v.Value = core.BoolValue(t)
	case float64:
		v.Value = core.NumberValue(t)
	case string:
		v.Value = core.StringValue(t)
	case map[string]any:
		var obj rawObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.Type == AliasType:
			fileKey, id := SplitAliasID(obj.ID)
			v.Value = core.AliasValue(id, fileKey)
		case obj.R != nil && obj.G != nil && obj.B != nil:
			c := color.RGBA{R: *obj.R, G: *obj.G, B: *obj.B, A: 1}
			if obj.A != nil {
				c.A = *obj.A
			}
			v.Value = core.ColorValue(c)
		default:
			v.Value = core.StringValue(string(data))
		}
	default:
		v.Value = core.StringValue(strings.TrimSpace(string(data)))
	}
	return nil
}

// MarshalJSON writes the value in API shape.
func (v RawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeValue(v.Value))
}

// SplitAliasID separates an optional library file key from an alias id:
// "VariableID:abc123/1:2" yields ("abc123", "VariableID:1:2").
func SplitAliasID(id string) (fileKey, variableID string) {
	i := strings.Index(id, "/")
	if i < 0 {
		return "", id
	}
	prefix, rest := id[:i], id[i+1:]
	const idPrefix = "VariableID:"
	if strings.HasPrefix(prefix, idPrefix) {
		return strings.TrimPrefix(prefix, idPrefix), idPrefix + rest
	}
	return prefix, rest
}

// APIColor is a color in the 0-1 scale the API expects.
type APIColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Alias is the API shape of an alias value.
type Alias struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// EncodeValue converts a value to the JSON-ready API representation.
// Colors are always normalized to 0-1.
func EncodeValue(v core.Value) any {
	switch v.Kind {
	case core.KindColor:
		c := v.APIColor()
		return APIColor{R: c.R, G: c.G, B: c.B, A: c.A}
	case core.KindNumber:
		return v.Number
	case core.KindBoolean:
		return v.Bool
	case core.KindAlias:
		id := v.AliasID
		if v.AliasFileKey != "" {
			id = v.AliasFileKey + "/" + id
		}
		return Alias{Type: AliasType, ID: id}
	default:
		return v.Str
	}
}
