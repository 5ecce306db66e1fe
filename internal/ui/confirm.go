package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box and asks a yes/no question on in.
// Only "y" or "yes" (any case) confirms; EOF declines.
func (p *Printer) Confirm(in io.Reader, title string, warnings []string, question string) bool {
	var lines []string
	for _, warning := range warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+warning))
	}

	r := NewWarningResult(title, nil).SetWidth(p.width)
	p.Println(r.box(maxInt(p.width, MinTerminalWidth), WarningColor,
		lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)),
		lines))

	promptStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	p.Print(promptStyle.Render(question + " [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	p.Newline()
	if err != nil && input == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	p.Println(TableMutedStyle.Render("  Operation cancelled."))
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
