package normalize

import "strings"

// Placeholders used for the grade and device parts of a mode identifier.
// Theme mode names only encode brand and theme.
const (
	DefaultGrade  = "primary"
	DefaultDevice = "desktop"
	DefaultTheme  = "Default"
)

// ParseModeName splits a "Brand (Theme)" mode name. A name without a
// parenthesized suffix is all brand with the Default theme.
func ParseModeName(name string) (brand, theme string) {
	name = strings.TrimSpace(name)
	open := strings.LastIndex(name, "(")
	closing := strings.LastIndex(name, ")")
	if open <= 0 || closing < open {
		return name, DefaultTheme
	}

	brand = strings.TrimSpace(name[:open])
	theme = strings.TrimSpace(name[open+1 : closing])
	if theme == "" {
		theme = DefaultTheme
	}
	return brand, theme
}

// ModeIdentifier builds the lower-cased "brand-grade-device-theme" key.
func ModeIdentifier(brand, grade, device, theme string) string {
	return strings.ToLower(strings.Join([]string{brand, grade, device, theme}, "-"))
}
