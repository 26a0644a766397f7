package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func askYesNo(styled string) bool {
	fmt.Printf("%s [y/N]: ", styled)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// Confirm asks a yes/no question and reports whether the user agreed.
// Anything but y/yes counts as no.
func Confirm(prompt string) bool {
	return askYesNo(StyleWarning.Render(prompt))
}

// ConfirmDanger is Confirm in the error color, for destructive actions.
func ConfirmDanger(prompt string) bool {
	return askYesNo(StyleError.Render("⚠ " + prompt))
}
