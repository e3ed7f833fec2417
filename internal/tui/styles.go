package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the chat view
type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Heading   lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Input     lipgloss.Style
}

// DefaultStyles returns the default colour scheme
func DefaultStyles() *Styles {
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7")),
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7D7")),
		Assistant: lipgloss.NewStyle(),
		Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D7AF00")),
		Bold:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D7AF00")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F")),
		Input:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5FAFD7")),
	}
}
