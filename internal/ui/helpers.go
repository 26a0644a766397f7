package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// padR pads s to exactly n display cells, measured with lipgloss so ANSI
// escape sequences don't count against the width.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}

func trimErr(s string) string {
	// Strip common noisy prefixes from RPC error messages.
	for _, prefix := range []string{
		"Post \"", "dial tcp", "connection refused",
		"no RPCs configured", "context deadline",
	} {
		if strings.Contains(s, prefix) {
			if idx := strings.Index(s, prefix); idx >= 0 {
				s = s[idx:]
			}
			break
		}
	}
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

// PromptInput reads one line from stdin after printing a label. Returns the
// trimmed input; empty string if the user just presses Enter.
func PromptInput(label string) string {
	fmt.Printf("%s: ", StyleValue.Render(label))
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// copyToClipboard writes text to the system clipboard.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "windows":
		cmd = exec.Command("clip")
	default:
		// Try wl-copy (Wayland), fall back to xclip.
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	_, _ = io.WriteString(stdin, text)
	stdin.Close()
	return cmd.Wait()
}
