// Package terminal renders console view models for a terminal.
package terminal

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the renderer.
type Styles struct {
	Title  lipgloss.Style
	Sub    lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Badge  lipgloss.Style
	Error  lipgloss.Style
	Header lipgloss.Style
	Block  lipgloss.Style
}

// DefaultStyles is the colored theme.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	muted := lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Sub: lipgloss.NewStyle().
			Foreground(primary).
			Underline(true),
		Label: lipgloss.NewStyle().
			Foreground(muted),
		Value: lipgloss.NewStyle().
			Foreground(primary),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#1f2937")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#dc2626")).
			Bold(true),
		Header: lipgloss.NewStyle().
			Bold(true),
		Block: lipgloss.NewStyle().
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(muted),
	}
}

// PlainStyles renders without color or decoration, for pipes and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:  plain,
		Sub:    plain,
		Label:  plain,
		Value:  plain,
		Muted:  plain,
		Badge:  plain,
		Error:  plain,
		Header: plain,
		Block:  plain.PaddingLeft(2),
	}
}
