package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var devnetCmd = &cobra.Command{
	Use:   "devnet",
	Short: "Devnet-only helpers: fund accounts, deploy and mint tokens",
	Long: `Manage the local devnet ledger.

These commands exist so donations can be rehearsed without touching a real
chain: fund a wallet with native currency, deploy extra test tokens, and
mint balances to hand out. They refuse to run against the chain backend.

Examples:
  w3pool devnet fund alice 50
  w3pool devnet deploy-token USDP 6
  w3pool devnet mint USDP alice 1000
  w3pool devnet tokens`,
}

var devnetFundCmd = &cobra.Command{
	Use:     "fund <wallet|address> <amount>",
	Short:   "Mint native currency to an account",
	Args:    cobra.ExactArgs(2),
	PreRunE: requireDevnet,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		to, err := resolveRecipient(ctx, s, args[0])
		if err != nil {
			return err
		}
		amount, err := parseUnits(args[1], nativeDecimals)
		if err != nil {
			return err
		}
		if err := s.ledger.MintNative(to, amount); err != nil {
			return err
		}
		if err := s.ledger.Save(); err != nil {
			return err
		}
		bal := s.ledger.NativeBalanceOf(to)
		fmt.Println(ui.Success(fmt.Sprintf("Funded %s with %s native (balance now %s)",
			ui.TruncateAddr(to.Hex()), args[1], formatUnits(bal, nativeDecimals))))
		return nil
	},
}

var devnetDeployCmd = &cobra.Command{
	Use:     "deploy-token <symbol> [decimals]",
	Short:   "Deploy a fresh test token to the devnet ledger",
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireDevnet,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		symbol := args[0]
		decimals := nativeDecimals
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 || n > 36 {
				return fmt.Errorf("decimals must be an integer between 0 and 36")
			}
			decimals = n
		}

		creator, _, err := activeWallet("")
		if err != nil {
			return err
		}
		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		addr, err := s.ledger.DeployToken(common.HexToAddress(creator.Address), symbol, uint8(decimals))
		if err != nil {
			return err
		}
		if err := s.ledger.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Deployed %s at %s (%d decimals)", symbol, addr.Hex(), decimals)))
		fmt.Println(ui.Hint(fmt.Sprintf("Approve it for donations with: w3pool approve %s", symbol)))
		return nil
	},
}

var devnetMintCmd = &cobra.Command{
	Use:     "mint <asset> <wallet|address> <amount>",
	Short:   "Mint test-token balance to an account",
	Args:    cobra.ExactArgs(3),
	PreRunE: requireDevnet,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		asset, err := resolveAsset(s, args[0])
		if err != nil {
			return err
		}
		to, err := resolveRecipient(ctx, s, args[1])
		if err != nil {
			return err
		}
		meta, err := s.assetMeta(ctx, asset)
		if err != nil {
			return err
		}
		amount, err := parseUnits(args[2], meta.Decimals)
		if err != nil {
			return err
		}
		if err := s.ledger.MintToken(asset, to, amount); err != nil {
			return err
		}
		if err := s.ledger.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Minted %s %s to %s", args[2], meta.Symbol, ui.TruncateAddr(to.Hex()))))
		return nil
	},
}

var devnetTokensCmd = &cobra.Command{
	Use:     "tokens",
	Short:   "List tokens deployed on the devnet ledger",
	Args:    cobra.NoArgs,
	PreRunE: requireDevnet,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		list := s.ledger.ListTokens()
		if len(list) == 0 {
			fmt.Println(ui.Info("No tokens deployed yet — try `w3pool devnet deploy-token USDP 6`."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Symbol", Width: 10},
			{Title: "Address", Width: 44},
			{Title: "Decimals", Width: 8},
			{Title: "Pool Balance", Width: 18},
		})
		for _, tok := range list {
			balStr := "—"
			if bal, err := s.pool.Balance(ctx, tok.Address); err == nil {
				balStr = formatUnits(bal, tok.Decimals)
			}
			sym := tok.Symbol
			if tok.Address == s.ledger.Wrapped() {
				sym += " ◈"
			}
			t.AddRow(ui.Row{ui.Val(sym), ui.Addr(tok.Address.Hex()), fmt.Sprintf("%d", tok.Decimals), balStr})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta("◈ wrapped native"))
		return nil
	},
}

func init() {
	devnetCmd.AddCommand(devnetFundCmd, devnetDeployCmd, devnetMintCmd, devnetTokensCmd)
}
