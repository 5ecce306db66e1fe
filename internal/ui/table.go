package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows under a header line with columns padded to the widest cell
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given column titles
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row; missing cells render as "-"
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Render returns the table as a string, one line per row
func (t *Table) Render() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := range t.Headers {
			if w := lipgloss.Width(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(t.renderLine(t.Headers, widths, func(int, string) lipgloss.Style { return TableHeaderStyle }))
	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(t.renderLine(row, widths, func(i int, c string) lipgloss.Style {
			if c == "-" {
				return TableMutedStyle
			}
			return TableCellStyle
		}))
	}
	return b.String()
}

func (t *Table) renderLine(row []string, widths []int, style func(int, string) lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		c := cell(row, i)
		padded := c + strings.Repeat(" ", w-lipgloss.Width(c))
		parts[i] = style(i, c).Render(padded)
	}
	return "  " + strings.TrimRight(strings.Join(parts, "  "), " ")
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}

func cell(row []string, i int) string {
	if i >= len(row) || row[i] == "" {
		return "-"
	}
	return row[i]
}
