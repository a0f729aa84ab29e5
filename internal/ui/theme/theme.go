package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	TextDim   = lipgloss.Color("#94A3B8") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Feedback
var (
	Correct = lipgloss.NewStyle().
		Bold(true).
		Foreground(Success)

	Incorrect = lipgloss.NewStyle().
			Bold(true).
			Foreground(Error)
)

// Category returns the style for a session slot category or review status.
func Category(name string) lipgloss.Style {
	switch name {
	case "due", "overdue":
		return lipgloss.NewStyle().Foreground(Accent)
	case "learning", "not_due":
		return lipgloss.NewStyle().Foreground(Secondary)
	case "mastered", "ahead":
		return lipgloss.NewStyle().Foreground(Success)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}
