package mutation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/figvars/pkg/color"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// CoerceValue converts raw input to a literal of type t. A nil raw keeps
// fallback when it already has the right type. Unparsable input degrades to
// the type's zero value.
func CoerceValue(t core.ValueType, raw any, fallback core.Value) core.Value {
	if v, ok := raw.(core.Value); ok {
		if v.Type() == t {
			return v
		}
		raw = literalOf(v)
	}
	if raw == nil && fallback.Type() == t && !fallback.IsAlias() {
		return fallback
	}

	switch t {
	case core.TypeColor:
		return coerceColor(raw, fallback)
	case core.TypeBoolean:
		return core.BoolValue(coerceBool(raw))
	case core.TypeFloat:
		return core.NumberValue(coerceNumber(raw))
	default:
		if raw == nil {
			return core.StringValue("")
		}
		return core.StringValue(fmt.Sprint(raw))
	}
}

func literalOf(v core.Value) any {
	switch v.Kind {
	case core.KindColor:
		return v.Color
	case core.KindNumber:
		return v.Number
	case core.KindBoolean:
		return v.Bool
	case core.KindString:
		return v.Str
	default:
		return nil
	}
}

// coerceColor always yields a value whose API form is 0-1, whatever scale
// the input used.
func coerceColor(raw any, fallback core.Value) core.Value {
	alpha := 1.0
	if fallback.IsColor() {
		alpha = fallback.Color.A
	}

	switch r := raw.(type) {
	case color.RGBA:
		return core.ColorValue(color.ToAPIRGB(r))
	case string:
		return displayColor(color.ParseColorTextWithAlpha(r, alpha))
	case map[string]any:
		c := color.RGBA{
			R: coerceNumber(r["r"]),
			G: coerceNumber(r["g"]),
			B: coerceNumber(r["b"]),
			A: alpha,
		}
		if a, ok := r["a"]; ok {
			c.A = coerceNumber(a)
		}
		return core.ColorValue(color.ToAPIRGB(c))
	default:
		return core.ColorValue(color.Opaque(0, 0, 0))
	}
}

// displayColor builds a value from text known to be in the 0-255 scale, so
// dark colors are not mistaken for 0-1 channels.
func displayColor(c color.RGBA) core.Value {
	return core.ColorValue(color.RGBA{R: c.R / 255, G: c.G / 255, B: c.B / 255, A: c.A})
}

func coerceBool(raw any) bool {
	switch r := raw.(type) {
	case bool:
		return r
	case string:
		return strings.EqualFold(strings.TrimSpace(r), "true")
	case int:
		return r != 0
	case float64:
		return r != 0
	default:
		return false
	}
}

func coerceNumber(raw any) float64 {
	var f float64
	switch r := raw.(type) {
	case float64:
		f = r
	case float32:
		f = float64(r)
	case int:
		f = float64(r)
	case int64:
		f = float64(r)
	case uint64:
		f = float64(r)
	case string:
		parsed, err := strconv.ParseFloat(leadingNumber(r), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if r {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// leadingNumber returns the longest numeric prefix of s, so "12px" parses
// as 12.
func leadingNumber(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			seenDigit = true
		case (ch == '+' || ch == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case ch == '.' && !seenDot && !seenExp:
			seenDot = true
		case (ch == 'e' || ch == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			return trimIncomplete(s[:end])
		}
		end = i + 1
	}
	return trimIncomplete(s[:end])
}

func trimIncomplete(s string) string {
	return strings.TrimRight(s, "eE+-")
}
