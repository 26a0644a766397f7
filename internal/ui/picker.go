package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one entry in the interactive picker.
type PickerItem struct {
	Label    string // primary text, e.g. a wallet name
	SubLabel string // dimmed secondary text, e.g. an address
	Value    string // returned on selection, may differ from Label
}

// pickerModel is the bubbletea model behind PickItem.
type pickerModel struct {
	title  string
	items  []PickerItem
	cursor int
	choice int // index of the accepted item, -1 while browsing
	closed bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.closed = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.choice = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.closed || m.choice >= 0 {
		return ""
	}

	lines := []string{"", StyleTitle.Render("  " + m.title), ""}
	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := prefix + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", StyleMeta.Render("  ↑↓/jk move · enter select · q cancel"), "")
	return strings.Join(lines, "\n")
}

// PickItem runs an interactive list picker and returns the chosen Value, or
// "" when the user cancels. The error is only ever a TUI failure.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}

	p := tea.NewProgram(pickerModel{title: title, items: items, choice: -1}, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	m := final.(pickerModel)
	if m.closed || m.choice < 0 {
		return "", nil
	}
	return m.items[m.choice].Value, nil
}
