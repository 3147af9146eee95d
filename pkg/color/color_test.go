package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDisplayRGB(t *testing.T) {
	got := ToDisplayRGB(RGBA{R: 1, G: 0.5, B: 0, A: 0.4})
	assert.Equal(t, RGBA{R: 255, G: 128, B: 0, A: 0.4}, got)
}

func TestToAPIRGB_DetectsScale(t *testing.T) {
	tests := []struct {
		name string
		in   RGBA
		want RGBA
	}{
		{"display scale", RGBA{R: 255, G: 0, B: 51, A: 1}, RGBA{R: 1, G: 0, B: 0.2, A: 1}},
		{"already api scale", RGBA{R: 0.2, G: 0.4, B: 1, A: 0.5}, RGBA{R: 0.2, G: 0.4, B: 1, A: 0.5}},
		{"black", RGBA{A: 1}, RGBA{A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAPIRGB(tt.in)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
			assert.Equal(t, tt.want.A, got.A)
		})
	}
}

func TestToAPIRGB_IdempotentAfterFirstNormalization(t *testing.T) {
	for r := 0; r <= 255; r += 5 {
		for _, gb := range [][2]int{{0, 0}, {17, 200}, {255, 255}, {1, 2}} {
			x := RGBA{R: float64(r), G: float64(gb[0]), B: float64(gb[1]), A: 1}
			once := ToAPIRGB(x)
			again := ToAPIRGB(ToDisplayRGB(once))
			assert.Equal(t, once, again, "x=%+v", x)
		}
	}
}

func TestParseColorText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		alpha float64
		want  RGBA
	}{
		{"plain triple", "10, 20, 30", 1, RGBA{R: 10, G: 20, B: 30, A: 1}},
		{"quad without spaces", "10,20,30,0.5", 1, RGBA{R: 10, G: 20, B: 30, A: 0.5}},
		{"rgb func", "rgb(1, 2, 3)", 0.3, RGBA{R: 1, G: 2, B: 3, A: 0.3}},
		{"rgba func", "RGBA(255, 0, 0, 0.25)", 1, RGBA{R: 255, A: 0.25}},
		{"clamped", "300, -4, 12, 7", 1, RGBA{R: 255, G: 0, B: 12, A: 1}},
		{"garbage channels", "red, x, ", 1, RGBA{A: 1}},
		{"empty", "", 0.8, RGBA{A: 0.8}},
		{"hex", "#ff8000", 1, RGBA{R: 255, G: 128, B: 0, A: 1}},
		{"hex with alpha", "#00000080", 1, RGBA{A: 128.0 / 255}},
		{"bad hex", "#zz", 1, RGBA{A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColorTextWithAlpha(tt.text, tt.alpha))
		})
	}
}

func TestParseColorText_DefaultAlpha(t *testing.T) {
	assert.Equal(t, 1.0, ParseColorText("1,2,3").A)
}

func TestFormatting(t *testing.T) {
	c := RGBA{R: 255, G: 128, B: 0, A: 0.5}

	assert.Equal(t, "rgba(255, 128, 0, 0.5)", CSSString(c))
	assert.Equal(t, "#ff8000", Hex(c))
	assert.Equal(t, "#ff800080", HexWithAlpha(c))
	assert.Equal(t, "#ff8000", HexWithAlpha(Opaque(255, 128, 0)))
	assert.Equal(t, "#ff8000", Hex(RGBA{R: 1, G: 128.0 / 255, B: 0, A: 1}))
	assert.Equal(t, "rgba(255, 128, 0, 1)", FormatDisplay(RGBA{R: 1, G: 0.5, B: 0, A: 1}))
}
