// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     console
// Description: Styles for the console TUI
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)
)

// Transcript styles
var (
	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	CommandStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	ResultOkStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ResultWarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ResultErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)
)

// Log level styles
var (
	LogDebugStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Bold(true)
	LogInfoStyle  = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	LogWarnStyle  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	LogErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Logo
const Logo = "sceneBRIDGE Console"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}

// RenderResult colors a result string by its status token
func RenderResult(result string) string {
	switch {
	case result == "Ok" || result == "0":
		return ResultOkStyle.Render(result)
	case result == "NotFound" || strings.HasPrefix(result, "Renamed:"):
		return ResultWarnStyle.Render(result)
	case result == "Failed" || result == "1" || result == "UnknownCommand":
		return ResultErrorStyle.Render(result)
	default:
		return ResultOkStyle.Render(result)
	}
}

// RenderLevelBadge renders a log level badge with appropriate styling
func RenderLevelBadge(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE", "DEBUG":
		return LogDebugStyle.Render("[DEBUG]")
	case "WARN", "WARNING":
		return LogWarnStyle.Render("[WARN] ")
	case "ERROR", "FATAL":
		return LogErrorStyle.Render("[ERROR]")
	default:
		return LogInfoStyle.Render("[INFO] ")
	}
}
