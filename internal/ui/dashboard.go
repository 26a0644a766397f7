package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PoolEntry is one asset's state for the live pool dashboard.
type PoolEntry struct {
	Symbol   string
	Asset    string // 0x... address
	Balance  string // formatted units
	Approved bool
	Wrapped  bool // the pool's wrapped-native token
}

type dashboardModel struct {
	entries    []PoolEntry
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	refreshing bool
	fetcher    func() ([]PoolEntry, error)
	err        string
}

type tickMsg time.Time
type poolFetchedMsg []PoolEntry
type poolErrorMsg string

// NewDashboard creates the live pool dashboard program. fetcher is called
// on every tick, and on demand via the r key, to refresh per-asset
// balances.
func NewDashboard(interval time.Duration, fetcher func() ([]PoolEntry, error)) *tea.Program {
	m := dashboardModel{
		interval: interval,
		fetcher:  fetcher,
	}
	return tea.NewProgram(m)
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.refreshing {
				m.refreshing = true
				return m, m.fetchCmd()
			}
		}

	case tickMsg:
		m.refreshing = true
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case poolFetchedMsg:
		m.entries = []PoolEntry(msg)
		m.lastUpdate = time.Now()
		m.refreshing = false
		m.err = ""

	case poolErrorMsg:
		// Keep the last good table on screen next to the error.
		m.refreshing = false
		m.err = string(msg)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ Live Pool Dashboard") + "\n")

	status := fmt.Sprintf("Updated: %s", m.lastUpdate.Format("15:04:05"))
	if m.refreshing {
		status += " · refreshing"
	}
	sb.WriteString(StyleMeta.Render(status+" · r refresh · q quit") + "\n\n")

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}
	if len(m.entries) == 0 {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
		return sb.String()
	}

	t := NewTable([]Column{
		{Title: "Asset", Width: 10},
		{Title: "Address", Width: 14},
		{Title: "Pool Balance", Width: 22},
		{Title: "Approved", Width: 10},
	})
	approvedCount := 0
	for _, e := range m.entries {
		symbol := e.Symbol
		if e.Wrapped {
			symbol = "◈ " + symbol
		}
		approved := StyleDim.Render("no")
		if e.Approved {
			approved = StyleSuccess.Render("yes")
			approvedCount++
		}
		t.AddRow(Row{
			ChainName(symbol),
			TruncateAddr(e.Asset),
			Val(e.Balance) + " " + StyleMeta.Render(e.Symbol),
			approved,
		})
	}
	sb.WriteString(t.Render())
	sb.WriteString(StyleMeta.Render(fmt.Sprintf(
		"\n%d asset(s) · %d approved · ◈ wrapped native\n", len(m.entries), approvedCount)))

	return sb.String()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.fetcher()
		if err != nil {
			return poolErrorMsg(err.Error())
		}
		return poolFetchedMsg(entries)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
