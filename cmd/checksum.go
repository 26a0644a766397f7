package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

// Verdict classes for an address checked against its EIP-55 form.
const (
	verdictChecksummed = "checksummed" // input already carries the correct casing
	verdictCaseless    = "caseless"    // all-lower or all-upper, valid but unchecked
	verdictMismatch    = "mismatch"    // mixed case that fails the checksum
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <address>",
	Short: "Validate or convert an address to EIP-55 checksum format",
	Long: `Convert an address to its EIP-55 mixed-case form and report whether the
input already carried a valid checksum.

Worth running on donor, recipient and asset addresses before handing them
to approve, donate or claim: a mixed-case address that fails the checksum
is almost always a typo.

Examples:
  w3pool checksum 0xd8da6bf26964af9d7eed9e03e53415d37aa96045
  w3pool checksum 0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		bare := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
		if len(bare) != 40 {
			return fmt.Errorf("invalid address length: expected 40 hex chars, got %d", len(bare))
		}
		if _, err := hex.DecodeString(bare); err != nil {
			return fmt.Errorf("invalid hex address: %w", err)
		}

		checksummed := checksumAddress(bare)

		var verdict string
		switch checksumVerdict(input, checksummed) {
		case verdictChecksummed:
			verdict = ui.Success("address is correctly checksummed")
		case verdictCaseless:
			verdict = ui.Warn("valid address but not checksummed")
		default:
			verdict = ui.Err("mixed-case input does not match the EIP-55 checksum")
		}

		fmt.Println(ui.KeyValueBlock("EIP-55 Checksum", [][2]string{
			{"Input", input},
			{"Checksummed", ui.Addr(checksummed)},
			{"Verdict", verdict},
		}))
		return nil
	},
}

// checksumAddress returns the EIP-55 form of a bare 40-char hex address.
// Case in the input is discarded: the checksum derives from the keccak hash
// of the lowercased hex.
func checksumAddress(bare string) string {
	lower := strings.ToLower(bare)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, 0, 2+len(lower))
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// checksumVerdict classifies input against its checksummed form. A caseless
// input (all-lower or all-upper hex) is valid but carries no checksum; a
// mixed-case input either matches exactly or indicates a corrupted address.
func checksumVerdict(input, checksummed string) string {
	if input == checksummed {
		return verdictChecksummed
	}
	bare := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if strings.ToLower(bare) == bare || strings.ToUpper(bare) == bare {
		return verdictCaseless
	}
	return verdictMismatch
}
