package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrWizardCancelled reports that the user quit setup before finishing.
var ErrWizardCancelled = errors.New("setup cancelled")

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	Backend       string // "devnet" or "chain"
	OwnerWallet   string // signing wallet that owns the pool
	WrappedSymbol string // symbol for the wrapped native token
	RPCURL        string // only meaningful for the chain backend
	WrappedAddr   string // chain backend: canonical wrapped-coin contract
}

type wizardStep int

const (
	stepBackend wizardStep = iota
	stepOwner
	stepSymbol
	stepRPC
	stepWrapped
	stepDone
)

// prompt describes one free-text step.
type prompt struct {
	title string
	help  string
	def   string // applied when the user just presses Enter
}

var prompts = map[wizardStep]prompt{
	stepOwner: {
		title: "Name the owner wallet",
		help:  `A signing key is generated under this name (Enter for "owner"):`,
		def:   "owner",
	},
	stepSymbol: {
		title: "Wrapped native token symbol",
		help:  `Donated native currency is held as this token (Enter for "WDEV"):`,
		def:   "WDEV",
	},
	stepRPC: {
		title: "JSON-RPC endpoint",
		help:  "URL of the node the chain backend talks to:",
	},
	stepWrapped: {
		title: "Wrapped native token contract",
		help:  "Address of the canonical wrapped coin on this chain (e.g. WETH):",
	},
}

var backends = []string{"devnet", "chain"}

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	input     string
	inputMode bool
	cancelled bool
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit

	case "q":
		if !m.inputMode {
			m.cancelled = true
			return m, tea.Quit
		}
		m.input += "q"

	case "up", "k":
		if !m.inputMode && m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if !m.inputMode && m.cursor < len(backends)-1 {
			m.cursor++
		}

	case "enter":
		if m.inputMode {
			m.applyInput()
		} else {
			m.result.Backend = backends[m.cursor]
		}
		m.advance()

	case "backspace":
		if m.inputMode && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if m.inputMode {
			m.input += key.String()
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	// The RPC and wrapped-contract steps only apply to the chain backend.
	if m.step == stepRPC && m.result.Backend != "chain" {
		m.step = stepDone
		return
	}
	if _, ok := prompts[m.step]; ok {
		m.inputMode = true
		m.input = ""
	}
	m.cursor = 0
}

func (m *wizardModel) applyInput() {
	// Strip whitespace and accidental brackets from paste.
	val := strings.Trim(strings.TrimSpace(m.input), "[]")
	if val == "" {
		val = prompts[m.step].def
	}

	switch m.step {
	case stepOwner:
		m.result.OwnerWallet = val
	case stepSymbol:
		m.result.WrappedSymbol = strings.ToUpper(val)
	case stepRPC:
		m.result.RPCURL = val
	case stepWrapped:
		m.result.WrappedAddr = val
	}
	m.inputMode = false
}

func (m wizardModel) View() string {
	var s string
	switch m.step {
	case stepBackend:
		s = renderMenu("Select pool backend:", backends, m.cursor)
	case stepDone:
		s = Success("Setup complete!") + "\n"
	default:
		p := prompts[m.step]
		s = StyleTitle.Render(p.title) + "\n\n"
		s += StyleMeta.Render(p.help) + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	}
	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · q quit")
	return s
}

// RunWizard launches the interactive setup wizard. Returns
// ErrWizardCancelled when the user quits before the last step.
func RunWizard() (*WizardResult, error) {
	final, err := tea.NewProgram(wizardModel{}).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	m := final.(wizardModel)
	if m.cancelled {
		return nil, ErrWizardCancelled
	}
	return &m.result, nil
}
