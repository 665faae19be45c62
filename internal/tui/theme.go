package tui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the semantic styles the views render with. It is built
// once at session start and passed into the model: the core never touches
// style state, and nothing style-related is global or mutable.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Dim      lipgloss.Style
	Selected lipgloss.Style
	Size     lipgloss.Style
	Box      lipgloss.Style
}

// DefaultTheme returns the standard color scheme.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")),

		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC")),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3")),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D")),

		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D")),

		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D")),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3")).
			Underline(true),

		Size: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C77DFF")),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2),
	}
}
