package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/btterm/internal/ui"
	"github.com/muurk/btterm/internal/version"
)

// AppName is shown in the screen header
const AppName = "BTTERM"

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 40
	DefaultWidth     = 80
	DefaultHeight    = 24
)

var (
	// StatusStyle is for connection status lines in the log
	StatusStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Italic(true)

	// SentStyle is for echoed outgoing messages
	SentStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor)

	// ReceivedStyle is for text received from the device
	ReceivedStyle = lipgloss.NewStyle().
			Foreground(ui.AccentColor)

	// NoticeStyle is for transient notices below the input
	NoticeStyle = lipgloss.NewStyle().
			Foreground(ui.WarningColor).
			Bold(true)

	// SpinnerStyle is for the pending-connection spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	// TitleStyle is for screen titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true)

	// SubtleStyle is for secondary header and footer text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)

	stateStyles = map[string]lipgloss.Style{
		"disconnected": lipgloss.NewStyle().Foreground(ui.ErrorColor).Bold(true),
		"pending":      lipgloss.NewStyle().Foreground(ui.WarningColor).Bold(true),
		"connected":    lipgloss.NewStyle().Foreground(ui.SuccessColor).Bold(true),
	}
)

// RenderState renders a connection state badge
func RenderState(state string) string {
	style, ok := stateStyles[state]
	if !ok {
		style = SubtleStyle
	}
	return style.Render(state)
}

// RenderContainer lays out a screen as header, content and footer,
// separated by rules and filling the given width
func RenderContainer(header, content, footer string, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	rule := lipgloss.NewStyle().
		Foreground(ui.PrimaryColor).
		Width(width)

	headerStyle := rule.BorderStyle(lipgloss.Border{Bottom: "─"}).BorderBottom(true).BorderForeground(ui.PrimaryColor)
	footerStyle := rule.BorderStyle(lipgloss.Border{Top: "─"}).BorderTop(true).BorderForeground(ui.PrimaryColor)

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(header),
		content,
		footerStyle.Render(footer),
	)
}

// headerTitle returns the left side of the screen header
func headerTitle() string {
	return TitleStyle.Render(AppName) + " " + SubtleStyle.Render(version.Version)
}
