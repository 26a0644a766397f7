package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// AssetStatus is the fetch state of one asset's balance result.
type AssetStatus int

const (
	AssetStatusFetching AssetStatus = iota
	AssetStatusDone
	AssetStatusError
)

// AssetBalRow holds the fetch state for a single pool asset.
type AssetBalRow struct {
	Asset    string // 0x... token address
	Symbol   string
	Approved bool

	Status  AssetStatus
	Balance string // formatted units, e.g. "12.500000"
	Latency time.Duration
	Err     string
}

// AssetBalResult is sent by each fetch goroutine when it finishes.
type AssetBalResult struct {
	Asset   string
	Balance string
	Latency time.Duration
	Err     error
}

// AssetBalResultMsg wraps AssetBalResult as a Bubble Tea message.
type AssetBalResultMsg AssetBalResult

type assetBalTickMsg struct{}

func assetBalTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return assetBalTickMsg{}
	})
}

// AssetBalModel is the Bubble Tea model for the pool asset balance scanner.
type AssetBalModel struct {
	Account  string
	Rows     []AssetBalRow
	RowIndex map[string]int // asset address -> row
	Total    int            // goroutines expected
	Done     int            // goroutines that have responded
	Frame    int            // spinner frame index
	Sorted   bool
	Quitting bool
}

func (m AssetBalModel) Init() tea.Cmd {
	return assetBalTick()
}

func (m AssetBalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		}

	case assetBalTickMsg:
		m.Frame = (m.Frame + 1) % len(feedSpinFrames)
		// Once all goroutines are done, sort by balance descending.
		if m.Done >= m.Total && !m.Sorted {
			m.Sorted = true
			sort.SliceStable(m.Rows, func(i, j int) bool {
				bi, _ := strconv.ParseFloat(m.Rows[i].Balance, 64)
				bj, _ := strconv.ParseFloat(m.Rows[j].Balance, 64)
				if bi != bj {
					return bi > bj
				}
				return m.Rows[i].Symbol < m.Rows[j].Symbol
			})
			m.RowIndex = nil // indices are stale after sort; no more results expected
		}
		return m, assetBalTick()

	case AssetBalResultMsg:
		idx, ok := m.RowIndex[msg.Asset]
		if !ok {
			return m, nil
		}
		if msg.Err != nil {
			m.Rows[idx].Status = AssetStatusError
			m.Rows[idx].Err = trimErr(msg.Err.Error())
		} else {
			m.Rows[idx].Status = AssetStatusDone
			m.Rows[idx].Balance = msg.Balance
			m.Rows[idx].Latency = msg.Latency
		}
		m.Done++
	}

	return m, nil
}

func (m AssetBalModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := feedSpinFrames[m.Frame]

	// ── Title ─────────────────────────────────────────────────────────────
	title := fmt.Sprintf("⚡ Pool Balances  ·  %s", TruncateAddr(m.Account))
	sb.WriteString(StyleTitle.Render(title) + "\n")

	// ── Progress bar ───────────────────────────────────────────────────────
	var progress string
	if m.Done >= m.Total {
		label := fmt.Sprintf("✓ %d/%d assets done", m.Done, m.Total)
		if m.Sorted {
			label += " · sorted by balance ↓"
		}
		progress = StyleSuccess.Render(label)
	} else {
		progress = StyleInfo.Render(fmt.Sprintf("%s %d/%d fetching…", spin, m.Done, m.Total))
	}
	sb.WriteString(progress + StyleMeta.Render("   press q to quit") + "\n\n")

	// ── Table ──────────────────────────────────────────────────────────────
	const (
		wSym  = 10
		wAddr = 14
		wBal  = 24
		wLat  = 10
	)
	sep := StyleMeta.Render(strings.Repeat("─", wSym+wAddr+wBal+wLat+12))

	sb.WriteString(
		padR(StyleDim.Render("ASSET"), wSym) + "  " +
			padR(StyleDim.Render("ADDRESS"), wAddr) + "  " +
			padR(StyleDim.Render("POOL BALANCE"), wBal) + "  " +
			padR(StyleDim.Render("LATENCY"), wLat) + "  " +
			StyleDim.Render("STATUS") + "\n",
	)
	sb.WriteString(sep + "\n")

	for _, row := range m.Rows {
		balStr, latStr, statStr := renderAssetCell(row, spin)

		symStr := ChainName(row.Symbol)
		if !row.Approved {
			symStr = StyleDim.Render(row.Symbol)
		}

		sb.WriteString(
			padR(symStr, wSym) + "  " +
				padR(StyleAddress.Render(TruncateAddr(row.Asset)), wAddr) + "  " +
				padR(balStr, wBal) + "  " +
				padR(latStr, wLat) + "  " +
				statStr + "\n",
		)
	}

	sb.WriteString(sep + "\n")

	// Count assets with a non-zero balance.
	var nonZero int
	for _, row := range m.Rows {
		if row.Status == AssetStatusDone {
			if bal, _ := strconv.ParseFloat(row.Balance, 64); bal > 0 {
				nonZero++
			}
		}
	}
	if m.Done >= m.Total {
		if nonZero > 0 {
			sb.WriteString(StyleInfo.Render(fmt.Sprintf("  %d asset(s) hold a balance", nonZero)) + "\n")
		} else {
			sb.WriteString(StyleMeta.Render("  Pool holds no balance in any asset.") + "\n")
		}
	}

	return sb.String()
}

// renderAssetCell returns (balStr, latStr, statStr) for one result row.
func renderAssetCell(row AssetBalRow, spin string) (balStr, latStr, statStr string) {
	switch row.Status {
	case AssetStatusFetching:
		return StyleMeta.Render(spin + " fetching…"),
			StyleMeta.Render("—"),
			StyleMeta.Render("⏳")

	case AssetStatusDone:
		bal, _ := strconv.ParseFloat(row.Balance, 64)
		if bal > 0 {
			balStr = StyleValue.Render(row.Balance) + " " + StyleDim.Render(row.Symbol)
			statStr = StyleSuccess.Render("✓")
		} else {
			balStr = StyleDim.Render("0.000000 " + row.Symbol)
			statStr = StyleDim.Render("·")
		}
		latStr = StyleMeta.Render(row.Latency.Truncate(time.Millisecond).String())
		return

	case AssetStatusError:
		short := row.Err
		if len(short) > 22 {
			short = short[:22] + "…"
		}
		return StyleError.Render("✗ " + short),
			StyleMeta.Render("—"),
			StyleError.Render("✗")
	}
	return "", "", ""
}
