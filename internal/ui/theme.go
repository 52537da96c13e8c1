package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/blocksig/internal/config"
)

// Catppuccin Mocha defaults.
const (
	defaultGreen  = "#a6e3a1"
	defaultBlue   = "#89b4fa"
	defaultYellow = "#f9e2af"
	defaultRed    = "#f38ba8"
	defaultMuted  = "#5a6278"
	defaultDim    = "#3a4055"
)

// Theme holds the styles the bar presenter renders with.
type Theme struct {
	Filled  lipgloss.Style
	Empty   lipgloss.Style
	Spark   lipgloss.Style
	Rate    lipgloss.Style
	Muted   lipgloss.Style
	Failed  lipgloss.Style
	Warning lipgloss.Style
	Done    lipgloss.Style
}

// NewTheme builds a Theme, taking any colors set in tc over the defaults.
func NewTheme(tc config.ThemeConfig) Theme {
	pick := func(override *string, def string) lipgloss.Color {
		if override != nil && *override != "" {
			return lipgloss.Color(*override)
		}
		return lipgloss.Color(def)
	}
	green := pick(tc.Green, defaultGreen)
	blue := pick(tc.Blue, defaultBlue)
	yellow := pick(tc.Yellow, defaultYellow)
	red := pick(tc.Red, defaultRed)
	muted := pick(tc.Muted, defaultMuted)
	dim := pick(tc.Dim, defaultDim)

	return Theme{
		Filled:  lipgloss.NewStyle().Foreground(green),
		Empty:   lipgloss.NewStyle().Foreground(dim),
		Spark:   lipgloss.NewStyle().Foreground(blue),
		Rate:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Failed:  lipgloss.NewStyle().Foreground(red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(yellow),
		Done:    lipgloss.NewStyle().Foreground(green).Bold(true),
	}
}
