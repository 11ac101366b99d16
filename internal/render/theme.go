// Package render formats engine results for the terminal with lipgloss.
package render

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// Palette
var (
	Primary   = lipgloss.Color("#7C3AED") // Violet
	Secondary = lipgloss.Color("#0EA5E9") // Sky
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#10B981") // Emerald
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#475569")
)

// Text styles
var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Label    = lipgloss.NewStyle().Foreground(TextDim).Width(16)

	Done    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Failed  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(Accent)
)

// Card frames the profile view.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 1)

// DifficultyColor maps a difficulty to its table colour.
func DifficultyColor(d catalog.Difficulty) lipgloss.Style {
	switch d {
	case catalog.Easy:
		return lipgloss.NewStyle().Foreground(Success)
	case catalog.Medium:
		return lipgloss.NewStyle().Foreground(Accent)
	case catalog.Hard:
		return lipgloss.NewStyle().Foreground(Error)
	}
	return Body
}

// PriorityColor highlights high-priority recommendations.
func PriorityColor(p strategy.Priority) lipgloss.Style {
	switch p {
	case strategy.High:
		return lipgloss.NewStyle().Foreground(Primary).Bold(true)
	case strategy.Low:
		return Subtitle
	}
	return Body
}
