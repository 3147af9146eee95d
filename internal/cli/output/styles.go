package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the text-mode styles.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	VarPath    lipgloss.Style
	Collection lipgloss.Style
	Mode       lipgloss.Style
	Arrow      lipgloss.Style
	Swatch     lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer, so color output
// follows the destination's capabilities.
func NewStyles(re *lipgloss.Renderer) Styles {
	return Styles{
		Header1: re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Underline(true),
		Header2: re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    re.NewStyle().Bold(true),
		Muted:   re.NewStyle().Foreground(lipgloss.Color("8")),
		Success: re.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: re.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   re.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:    re.NewStyle().Foreground(lipgloss.Color("14")),

		VarPath:    re.NewStyle().Foreground(lipgloss.Color("14")),
		Collection: re.NewStyle().Foreground(lipgloss.Color("13")),
		Mode:       re.NewStyle().Foreground(lipgloss.Color("11")),
		Arrow:      re.NewStyle().Foreground(lipgloss.Color("8")),
		Swatch:     re.NewStyle(),
	}
}
