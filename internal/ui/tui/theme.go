package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style
	Focused  lipgloss.Style

	Label        lipgloss.Style
	Value        lipgloss.Style
	Cell         lipgloss.Style
	CellSelected lipgloss.Style
	CellInvalid  lipgloss.Style
	Header       lipgloss.Style

	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style

	Toast lipgloss.Style
}

func DefaultTheme() Theme {
	card := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))

	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea")),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Card:     card,
		Focused:  card.BorderForeground(lipgloss.Color("#667eea")),

		Label:        lipgloss.NewStyle().Faint(true),
		Value:        lipgloss.NewStyle().Bold(true),
		Cell:         lipgloss.NewStyle().Width(10),
		CellSelected: lipgloss.NewStyle().Width(10).Reverse(true),
		CellInvalid:  lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("#ff6b6b")),
		Header:       lipgloss.NewStyle().Width(10).Bold(true).Underline(true),

		StatusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4a90d9")),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#38a169")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e53e3e")),

		Toast: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")),
	}
}
