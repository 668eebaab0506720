package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains lipgloss styles for the interactive screens
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4A90E2")),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f39c12")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4b5c")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A90E2")).
			Padding(0, 1),
	}
}

// PlainStyles renders everything unstyled, for --no-color.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Status:  plain,
		Warning: plain,
		Error:   plain,
		Muted:   plain,
		Border:  plain,
	}
}

// ProgressBar renders an ASCII progress bar of the given width
func ProgressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	if done > total {
		done = total
	}

	filled := done * width / total

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat("░", width-filled))
	bar.WriteString("]")
	bar.WriteString(fmt.Sprintf(" %d/%d (%.0f%%)", done, total, float64(done)/float64(total)*100))
	return bar.String()
}
