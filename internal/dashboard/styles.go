package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	ColorAccent = lipgloss.Color("#FF2E97") // Neon pink
	ColorGraph  = lipgloss.Color("#00FFFF") // Neon cyan
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	GraphStyle = lipgloss.NewStyle().
			Foreground(ColorGraph)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)
)

// Status indicator characters
const (
	GlyphPending    = "◇"
	GlyphConnecting = "◐"
	GlyphStarted    = "◉"
	GlyphMonitoring = "●"
	GlyphRejected   = "⊖"
	GlyphFailed     = "✕"
	GlyphLost       = "◌"
)

// SpinnerFrames are the animation frames for servers being bootstrapped.
var SpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// StateStyle returns the indicator glyph and its style for a server state.
func StateStyle(s ServerState) (string, lipgloss.Style) {
	switch s {
	case StatePending:
		return GlyphPending, lipgloss.NewStyle().Foreground(ColorTextMuted)
	case StateConnecting:
		return GlyphConnecting, lipgloss.NewStyle().Foreground(ColorTextSecondary)
	case StateStarted:
		return GlyphStarted, lipgloss.NewStyle().Foreground(ColorHealthy)
	case StateMonitoring:
		return GlyphMonitoring, lipgloss.NewStyle().Foreground(ColorHealthy)
	case StateRejected:
		return GlyphRejected, lipgloss.NewStyle().Foreground(ColorWarning)
	case StateLost:
		return GlyphLost, lipgloss.NewStyle().Foreground(ColorCritical)
	default:
		return GlyphFailed, lipgloss.NewStyle().Foreground(ColorCritical)
	}
}
