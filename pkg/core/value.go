// Package core defines the in-memory model of a Figma variable set:
// variables, their per-mode values, collections, modes and the navigation tree.
//
// Values are a tagged union decided once when a payload is decoded, so
// downstream code switches on Kind instead of inspecting shapes.
package core

import (
	"strconv"

	"github.com/leapstack-labs/figvars/pkg/color"
)

// ValueType is the Figma-facing type name of a value.
type ValueType string

// Value types as named by the Figma REST API.
const (
	TypeColor   ValueType = "COLOR"
	TypeFloat   ValueType = "FLOAT"
	TypeString  ValueType = "STRING"
	TypeBoolean ValueType = "BOOLEAN"
	TypeAlias   ValueType = "VARIABLE_ALIAS"
)

// ParseValueType maps a resolvedType string to a ValueType.
// Unknown names map to TypeString.
func ParseValueType(s string) ValueType {
	switch ValueType(s) {
	case TypeColor, TypeFloat, TypeString, TypeBoolean, TypeAlias:
		return ValueType(s)
	default:
		return TypeString
	}
}

// ValueKind tags which member of Value is populated.
type ValueKind int

// Value kinds.
const (
	KindString ValueKind = iota
	KindNumber
	KindBoolean
	KindColor
	KindAlias
)

// Value is either a literal (color, number, string, boolean) or an alias to
// another variable.
type Value struct {
	Kind ValueKind

	// Color is the editor-facing color, 0-255 channels with 0-1 alpha.
	Color color.RGBA
	// Exact is the color at the precision it was received from the API
	// (0-1 channels). Zero for colors created in an editor.
	Exact color.RGBA

	Number float64
	Str    string
	Bool   bool

	// AliasID is the referenced variable id with any file key removed.
	AliasID string
	// AliasFileKey is the library file key the alias id was prefixed with.
	AliasFileKey string
}

// ColorValue builds a color literal from a 0-1 API color.
func ColorValue(api color.RGBA) Value {
	api = color.ToAPIRGB(api)
	return Value{Kind: KindColor, Color: color.ToDisplayRGB(api), Exact: api}
}

// DisplayColorValue builds a color literal from a 0-255 editor color.
func DisplayColorValue(display color.RGBA) Value {
	return Value{Kind: KindColor, Color: display}
}

// NumberValue builds a number literal.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// StringValue builds a string literal.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// BoolValue builds a boolean literal.
func BoolValue(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// AliasValue builds an alias to the variable id, optionally in a library file.
func AliasValue(id, fileKey string) Value {
	return Value{Kind: KindAlias, AliasID: id, AliasFileKey: fileKey}
}

// APIColor returns the color in the 0-1 API scale. The exact value decoded
// from the API is preferred while the display color still matches it.
func (v Value) APIColor() color.RGBA {
	if v.Exact != (color.RGBA{}) && color.ToDisplayRGB(v.Exact) == v.Color {
		return v.Exact
	}
	return color.ToAPIRGB(v.Color)
}

// Type returns the Figma type name of the value.
func (v Value) Type() ValueType {
	switch v.Kind {
	case KindColor:
		return TypeColor
	case KindNumber:
		return TypeFloat
	case KindBoolean:
		return TypeBoolean
	case KindAlias:
		return TypeAlias
	default:
		return TypeString
	}
}

// IsAlias reports whether the value points at another variable.
func (v Value) IsAlias() bool { return v.Kind == KindAlias }

// IsColor reports whether the value is a color literal.
func (v Value) IsColor() bool { return v.Kind == KindColor }

// Display renders the value the way the editor table shows it.
func (v Value) Display() string {
	switch v.Kind {
	case KindColor:
		return color.CSSString(v.Color)
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindAlias:
		return v.AliasID
	default:
		return v.Str
	}
}
