package browse

import "github.com/charmbracelet/lipgloss"

// StyleManager encapsulates all TUI styles
type StyleManager struct {
	// List view styles
	ID    lipgloss.Style
	Space lipgloss.Style
	Title lipgloss.Style

	Cursor lipgloss.Style
	Dim    lipgloss.Style

	// Preview styles
	PreviewTitle lipgloss.Style
	PreviewMeta  lipgloss.Style

	// Chrome styles
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		ID:           lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Space:        lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Title:        lipgloss.NewStyle(),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		PreviewTitle: lipgloss.NewStyle().Bold(true),
		PreviewMeta:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// Global style manager instance
var styles = DefaultStyles()
