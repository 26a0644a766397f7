package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var balanceAll bool

var balanceCmd = &cobra.Command{
	Use:   "balance [asset]",
	Short: "Show pool balances",
	Long: `Show what the pool holds.

Without arguments: the pool account's native balance and its wrapped-token
balance. With an asset (address, devnet symbol, or "wrapped"): that asset's
pool balance. With --all: every asset the pool can hold, fetched in
parallel.

Examples:
  w3pool balance
  w3pool balance USDP
  w3pool balance 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48
  w3pool balance --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}

		if balanceAll {
			return runBalanceScanner(ctx, s)
		}
		if len(args) == 1 {
			return runBalanceOne(ctx, s, args[0])
		}
		return runBalanceSummary(ctx, s)
	},
}

func runBalanceSummary(ctx context.Context, s *poolSession) error {
	sp := ui.NewSpinner("Fetching balances…")
	sp.Start()

	native, err := s.nativeBalance(ctx)
	if err != nil {
		sp.Stop()
		return fmt.Errorf("reading native balance: %w", err)
	}
	wrapped := s.pool.WrappedAsset()
	m, err := s.assetMeta(ctx, wrapped)
	if err != nil {
		sp.Stop()
		return fmt.Errorf("resolving wrapped token: %w", err)
	}
	wbal, err := s.pool.Balance(ctx, wrapped)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("reading wrapped balance: %w", err)
	}

	var approved int
	for _, ok := range s.pool.Approvals() {
		if ok {
			approved++
		}
	}

	fmt.Println(ui.KeyValueBlock("Pool Balance", [][2]string{
		{"Account", ui.Addr(s.pool.Account().Hex())},
		{"Native", ui.Val(formatUnits(native, nativeDecimals))},
		{m.Symbol, ui.Val(formatUnits(wbal, m.Decimals))},
		{"Approved assets", ui.Val(fmt.Sprintf("%d", approved))},
	}))
	fmt.Println(ui.Hint("See every asset with `w3pool balance --all`"))
	return nil
}

func runBalanceOne(ctx context.Context, s *poolSession, arg string) error {
	asset, err := resolveAsset(s, arg)
	if err != nil {
		return err
	}

	sp := ui.NewSpinner("Fetching balance…")
	sp.Start()
	m, err := s.assetMeta(ctx, asset)
	if err != nil {
		sp.Stop()
		return fmt.Errorf("resolving asset %s: %w", asset.Hex(), err)
	}
	bal, err := s.pool.Balance(ctx, asset)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("reading balance: %w", err)
	}

	status := ui.StyleDim.Render("not approved")
	if s.pool.IsApproved(asset) {
		status = ui.StyleSuccess.Render("approved")
	}
	fmt.Println(ui.KeyValueBlock("Pool Balance · "+m.Symbol, [][2]string{
		{"Asset", ui.Addr(asset.Hex())},
		{"Balance", ui.Val(formatUnits(bal, m.Decimals) + " " + m.Symbol)},
		{"Status", status},
	}))
	return nil
}

// runBalanceScanner fetches every asset's pool balance in parallel and
// renders results as they land.
func runBalanceScanner(ctx context.Context, s *poolSession) error {
	assets := s.assetList()

	rows := make([]ui.AssetBalRow, 0, len(assets))
	idx := make(map[string]int, len(assets))
	decimals := make(map[string]uint8, len(assets))
	for i, asset := range assets {
		sym, dec := "?", uint8(nativeDecimals)
		if m, err := s.assetMeta(ctx, asset); err == nil {
			sym, dec = m.Symbol, m.Decimals
		}
		rows = append(rows, ui.AssetBalRow{
			Asset:    asset.Hex(),
			Symbol:   sym,
			Approved: s.pool.IsApproved(asset),
			Status:   ui.AssetStatusFetching,
		})
		idx[asset.Hex()] = i
		decimals[asset.Hex()] = dec
	}

	model := ui.AssetBalModel{
		Account:  s.pool.Account().Hex(),
		Rows:     rows,
		RowIndex: idx,
		Total:    len(rows),
	}
	prog := tea.NewProgram(model)

	// One fetch goroutine per asset; results stream into the table.
	for _, asset := range assets {
		go func(a common.Address, dec uint8) {
			start := time.Now()
			bal, err := s.pool.Balance(context.Background(), a)
			res := ui.AssetBalResult{Asset: a.Hex(), Latency: time.Since(start), Err: err}
			if err == nil {
				res.Balance = formatUnits(bal, dec)
			}
			prog.Send(ui.AssetBalResultMsg(res))
		}(asset, decimals[asset.Hex()])
	}

	_, err := prog.Run()
	return err
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceAll, "all", false, "scan every asset the pool can hold")
}
