package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var (
	convertDecimals int
	convertFromBase bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert amounts between human units and base units",
	Long: `Convert a token amount between its human decimal form and the integer
base units used on chain, in the event journal and in raw JSON-RPC values.

The input is a human amount by default. Pass --base when the input is
already in base units; a 0x-prefixed value is read as a hex base-unit
word regardless of flags.

Examples:
  w3pool convert 1.5                        # native 18 decimals
  w3pool convert 250.25 --decimals 6        # six-decimal token
  w3pool convert 1500000000000000000 --base
  w3pool convert 0x14d1120d7b160000         # raw RPC balance word`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertDecimals < 0 || convertDecimals > 36 {
			return fmt.Errorf("decimals must be an integer between 0 and 36, got %d", convertDecimals)
		}
		dec := uint8(convertDecimals)
		amount := args[0]

		var (
			rows [][2]string
			err  error
		)
		switch {
		case strings.HasPrefix(amount, "0x") || strings.HasPrefix(amount, "0X"):
			rows, err = convertHexBase(amount, dec)
		case convertFromBase:
			rows, err = convertBaseUnits(amount, dec)
		default:
			rows, err = convertHumanUnits(amount, dec)
		}
		if err != nil {
			return err
		}

		for i := range rows {
			rows[i][1] = ui.Val(rows[i][1])
		}
		fmt.Println(ui.KeyValueBlock("Unit Conversion", rows))
		return nil
	},
}

// convertHumanUnits renders a human decimal amount in base units.
func convertHumanUnits(amount string, decimals uint8) ([][2]string, error) {
	n, err := parseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}
	return [][2]string{
		{"Input", fmt.Sprintf("%s (%d decimals)", amount, decimals)},
		{"Base units", n.String()},
		{"Hex", "0x" + n.Text(16)},
	}, nil
}

// convertBaseUnits renders integer base units as a human amount.
func convertBaseUnits(amount string, decimals uint8) ([][2]string, error) {
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid base-unit amount %q", amount)
	}
	return [][2]string{
		{"Input", amount + " base units"},
		{"Amount", formatUnits(n, decimals)},
		{"Hex", "0x" + n.Text(16)},
	}, nil
}

// convertHexBase renders a hex base-unit word, as returned by eth_call or
// found in raw transaction data.
func convertHexBase(amount string, decimals uint8) ([][2]string, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(amount, "0x"), "0X")
	n, ok := new(big.Int).SetString(clean, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", amount)
	}
	return [][2]string{
		{"Input", amount},
		{"Base units", n.String()},
		{"Amount", formatUnits(n, decimals)},
	}, nil
}

func init() {
	convertCmd.Flags().IntVar(&convertDecimals, "decimals", nativeDecimals, "token precision of the amount")
	convertCmd.Flags().BoolVar(&convertFromBase, "base", false, "input is already in base units")
}
