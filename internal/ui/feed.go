package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FeedEventMsg is sent when a new pool event arrives during streaming.
type FeedEventMsg struct {
	Kind      string // "donation", "claim" or "approval"
	Asset     string // full 0x... asset address (for copy)
	Symbol    string // resolved symbol, e.g. "WDEV"
	AmountStr string // formatted amount, e.g. "0.5000"
	Party     string // truncated donor or recipient address
	Approved  string // "granted"/"revoked" for approval events, else ""
	When      time.Time
}

// FeedStatusMsg updates the streaming status bar.
type FeedStatusMsg struct {
	Seen     int // events replayed from the journal so far
	Fetching bool
	ErrMsg   string
}

// FeedModel is the Bubble Tea model for the live donation event stream.
type FeedModel struct {
	Account  string
	Backend  string
	Rows     []FeedEventMsg
	cursor   int
	Status   FeedStatusMsg
	Frame    int
	Quitting bool
	flash    string
}

var feedSpinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type feedTickMsg struct{}

func feedSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return feedTickMsg{}
	})
}

func (m FeedModel) Init() tea.Cmd { return feedSpinTick() }

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}

		case "c":
			if m.cursor < len(m.Rows) {
				asset := m.Rows[m.cursor].Asset
				if asset == "" {
					m.flash = "No asset address available"
					break
				}
				if err := copyToClipboard(asset); err == nil {
					m.flash = "Copied: " + TruncateAddr(asset)
				} else {
					m.flash = "Copy failed"
				}
			}
		}

	case feedTickMsg:
		m.Frame = (m.Frame + 1) % len(feedSpinFrames)
		return m, feedSpinTick()

	case FeedEventMsg:
		// New events prepend so latest is at top.
		m.Rows = append([]FeedEventMsg{msg}, m.Rows...)
		// Cap at 200 rows.
		if len(m.Rows) > 200 {
			m.Rows = m.Rows[:200]
		}

	case FeedStatusMsg:
		m.Status = msg
	}

	return m, nil
}

func (m FeedModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := feedSpinFrames[m.Frame]

	// ── Title ─────────────────────────────────────────────────────────────
	title := fmt.Sprintf("👁  Live Pool Events  ·  %s  ·  %s",
		TruncateAddr(m.Account), m.Backend)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	// ── Status bar ────────────────────────────────────────────────────────
	if m.Status.ErrMsg != "" {
		sb.WriteString(StyleError.Render("✗ "+m.Status.ErrMsg) + "\n\n")
	} else if m.Status.Fetching {
		sb.WriteString(StyleInfo.Render(fmt.Sprintf("%s following event journal…", spin)) + "\n\n")
	} else if m.Status.Seen > 0 {
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d event(s) replayed", m.Status.Seen)) + "\n\n")
	} else {
		sb.WriteString(StyleMeta.Render("  connecting…") + "\n\n")
	}

	// ── Table ─────────────────────────────────────────────────────────────
	const (
		wKind  = 10
		wAsset = 10
		wVal   = 18
		wParty = 16
		wTime  = 10
	)
	sep := StyleMeta.Render(strings.Repeat("─", wKind+wAsset+wVal+wParty+wTime+12))

	// Header
	sb.WriteString(
		padR(StyleDim.Render("EVENT"), wKind) + "  " +
			padR(StyleDim.Render("ASSET"), wAsset) + "  " +
			padR(StyleDim.Render("AMOUNT"), wVal) + "  " +
			padR(StyleDim.Render("PARTY"), wParty) + "  " +
			StyleDim.Render("TIME") + "\n",
	)
	sb.WriteString(sep + "\n")

	if len(m.Rows) == 0 {
		sb.WriteString(StyleMeta.Render("  Waiting for events…") + "\n")
	} else {
		for i, row := range m.Rows {
			var kindStr string
			switch row.Kind {
			case "donation":
				kindStr = StyleSuccess.Render("← donate")
			case "claim":
				kindStr = StyleWarning.Render("→ claim")
			default:
				kindStr = StyleInfo.Render("⚙ approve")
			}

			assetStr := ChainName(row.Symbol)

			var valStr string
			if row.Approved != "" {
				valStr = StyleInfo.Render(row.Approved)
			} else {
				valStr = StyleValue.Render(row.AmountStr)
			}

			partyStr := StyleAddress.Render(row.Party)
			timeStr := StyleMeta.Render(row.When.Format("15:04:05"))

			line :=
				padR(kindStr, wKind) + "  " +
					padR(assetStr, wAsset) + "  " +
					padR(valStr, wVal) + "  " +
					padR(partyStr, wParty) + "  " +
					timeStr

			if i == m.cursor {
				sb.WriteString(StyleSelected.Render(line) + "\n")
			} else {
				sb.WriteString(line + "\n")
			}
		}
		sb.WriteString(sep + "\n")
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d event(s) shown", len(m.Rows))) + "\n")
	}

	// ── Controls ─────────────────────────────────────────────────────────
	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(feedControls())
	}
	sb.WriteString("\n")

	return sb.String()
}

func feedControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ]"))
	sb.WriteString(StyleMeta.Render(" navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" copy asset address"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}
