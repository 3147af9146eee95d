// Package color converts between Figma's 0-1 float RGBA representation and the
// 0-255 display representation used by editors, and formats colors as CSS
// rgba() and hex strings.
//
// Every function in this package degrades instead of failing: unparsable
// input produces zero channels, never an error.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBA is a color with red, green and blue channels in either the 0-1 API
// scale or the 0-255 display scale, and alpha always in 0-1.
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Opaque returns an RGBA with alpha 1.
func Opaque(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// IsDisplayScale reports whether any of r, g, b is above 1, meaning the
// color is expressed in the 0-255 scale.
func (c RGBA) IsDisplayScale() bool {
	return c.R > 1 || c.G > 1 || c.B > 1
}

// ToDisplayRGB converts a 0-1 API color to 0-255 integer channels.
// Alpha passes through unchanged.
func ToDisplayRGB(raw RGBA) RGBA {
	return RGBA{
		R: math.Round(raw.R * 255),
		G: math.Round(raw.G * 255),
		B: math.Round(raw.B * 255),
		A: raw.A,
	}
}

// ToAPIRGB normalizes a color to the 0-1 API scale. Colors already in 0-1
// are returned as-is so a value is never converted twice.
func ToAPIRGB(c RGBA) RGBA {
	if !c.IsDisplayScale() {
		return c
	}
	return RGBA{R: c.R / 255, G: c.G / 255, B: c.B / 255, A: c.A}
}

// ParseColorText parses "r, g, b", "r,g,b,a", "rgb(...)", "rgba(...)" or
// "#rrggbb" text into a 0-255 color. Missing alpha defaults to 1.
func ParseColorText(text string) RGBA {
	return ParseColorTextWithAlpha(text, 1)
}

// ParseColorTextWithAlpha is ParseColorText with the alpha to reuse when the
// text does not carry one.
func ParseColorTextWithAlpha(text string, existingAlpha float64) RGBA {
	s := strings.TrimSpace(strings.ToLower(text))

	if strings.HasPrefix(s, "#") {
		return parseHex(s, existingAlpha)
	}

	s = strings.TrimPrefix(s, "rgba")
	s = strings.TrimPrefix(s, "rgb")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	parts := strings.Split(s, ",")
	channel := func(i int) float64 {
		if i >= len(parts) {
			return 0
		}
		return parseNumber(parts[i])
	}

	c := RGBA{
		R: clamp(math.Round(channel(0)), 0, 255),
		G: clamp(math.Round(channel(1)), 0, 255),
		B: clamp(math.Round(channel(2)), 0, 255),
		A: clamp(existingAlpha, 0, 1),
	}
	if len(parts) > 3 && strings.TrimSpace(parts[3]) != "" {
		c.A = clamp(parseNumber(parts[3]), 0, 1)
	}
	return c
}

func parseHex(s string, alpha float64) RGBA {
	a := clamp(alpha, 0, 1)
	if len(s) == 9 {
		if v, err := strconv.ParseUint(s[7:], 16, 8); err == nil {
			a = float64(v) / 255
		}
		s = s[:7]
	}
	hc, err := colorful.Hex(s)
	if err != nil {
		return RGBA{A: a}
	}
	return RGBA{
		R: math.Round(hc.R * 255),
		G: math.Round(hc.G * 255),
		B: math.Round(hc.B * 255),
		A: a,
	}
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// CSSString formats a 0-255 color as "rgba(r, g, b, a)".
func CSSString(c RGBA) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)",
		int(math.Round(c.R)), int(math.Round(c.G)), int(math.Round(c.B)),
		strconv.FormatFloat(roundTo(c.A, 2), 'f', -1, 64))
}

// Hex formats a color as "#rrggbb", dropping alpha. Both scales are accepted.
func Hex(c RGBA) string {
	api := ToAPIRGB(c)
	return colorful.Color{R: api.R, G: api.G, B: api.B}.Clamped().Hex()
}

// HexWithAlpha formats a color as "#rrggbb", appending the alpha byte when
// alpha is below 1.
func HexWithAlpha(c RGBA) string {
	h := Hex(c)
	if c.A >= 1 {
		return h
	}
	return fmt.Sprintf("%s%02x", h, uint8(math.Round(clamp(c.A, 0, 1)*255)))
}

// FormatDisplay renders a 0-1 API color as the CSS string shown in editors.
func FormatDisplay(raw RGBA) string {
	return CSSString(ToDisplayRGB(ToAPIRGB(raw)))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
