package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders the fixed-width column layout used for balances, approvals
// and journal listings.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// pad fits s into exactly width cells, truncating or space-filling as
// needed. Width is measured in display cells, not bytes, so styled cells
// and multi-byte markers like the wrapped-native ◈ keep columns aligned.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)) > width {
			runes = runes[:len(runes)-1]
		}
		s, w = string(runes), lipgloss.Width(string(runes))
	}
	return s + strings.Repeat(" ", width-w)
}

// Render returns the table as a string: styled header, dashed divider, one
// line per row.
func (t *Table) Render() string {
	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	var sb strings.Builder
	cells := make([]string, len(t.Columns))

	for i, col := range t.Columns {
		cells[i] = headerStyle.Render(pad(col.Title, col.Width))
	}
	sb.WriteString(strings.Join(cells, " ") + "\n")

	for i, col := range t.Columns {
		cells[i] = dimStyle.Render(strings.Repeat("-", col.Width))
	}
	sb.WriteString(strings.Join(cells, " ") + "\n")

	for _, row := range t.Rows {
		for i, col := range t.Columns {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = cellStyle.Render(pad(val, col.Width))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}
	return sb.String()
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		val := StyleValue.Render(p[1])
		sb.WriteString("  " + key + " " + val + "\n")
	}
	return StyleBorder.Render(sb.String())
}
