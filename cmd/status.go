package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pool status",
	Long: `One-page overview of the pool: identity, holdings, registry size and
journal length. On the chain backend the RPC endpoint is pinged too.

--watch turns the overview into a live per-asset dashboard that refreshes
on the configured interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}

		if statusWatch {
			return runStatusDashboard()
		}

		sp := ui.NewSpinner("Reading pool state…")
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
		if err != nil {
			sp.Stop()
			return fmt.Errorf("reading wrapped balance: %w", err)
		}
		recorded, err := s.journal.All()
		sp.Stop()
		if err != nil {
			return fmt.Errorf("reading event journal: %w", err)
		}

		var approved, revoked int
		for _, ok := range s.pool.Approvals() {
			if ok {
				approved++
			} else {
				revoked++
			}
		}

		pairs := [][2]string{
			{"Backend", ui.Val(cfg.Backend)},
			{"Owner", ui.Addr(s.pool.Owner().Hex())},
			{"Account", ui.Addr(s.pool.Account().Hex())},
			{"Wrapped", ui.Val(m.Symbol) + "  " + ui.Addr(wrapped.Hex())},
			{"Native held", ui.Val(formatUnits(native, nativeDecimals))},
			{m.Symbol + " held", ui.Val(formatUnits(wbal, m.Decimals))},
			{"Registry", ui.Val(fmt.Sprintf("%d approved, %d revoked", approved, revoked))},
			{"Events", ui.Val(fmt.Sprintf("%d recorded", len(recorded)))},
		}

		if s.client != nil {
			latency, block, err := s.client.Ping(ctx)
			if err != nil {
				pairs = append(pairs, [2]string{"RPC", ui.Err(cfg.RPCURL + " (unreachable)")})
			} else {
				pairs = append(pairs,
					[2]string{"RPC", ui.Val(cfg.RPCURL)},
					[2]string{"Node", ui.Val(fmt.Sprintf("block %d · %s", block, latency.Truncate(time.Millisecond)))},
				)
			}
		}
		if verbose {
			pairs = append(pairs, [2]string{"Config", ui.Meta(cfg.Dir())})
			if s.ledger != nil {
				pairs = append(pairs, [2]string{"Ledger", ui.Meta(cfg.LedgerPath())})
			}
			pairs = append(pairs, [2]string{"Journal", ui.Meta(cfg.EventsPath())})
		}

		fmt.Println(ui.KeyValueBlock("Pool Status", pairs))
		return nil
	},
}

// runStatusDashboard refreshes per-asset pool balances on the watch interval.
// Each tick opens a fresh session so mutations from other processes show up,
// devnet ledger included.
func runStatusDashboard() error {
	interval := time.Duration(cfg.WatchInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	prog := ui.NewDashboard(interval, func() ([]ui.PoolEntry, error) {
		ctx := context.Background()
		live, err := openSession(ctx, nil)
		if err != nil {
			return nil, err
		}
		rows, err := live.poolAssets(ctx)
		if err != nil {
			return nil, err
		}
		wrapped := live.pool.WrappedAsset()
		out := make([]ui.PoolEntry, len(rows))
		for i, r := range rows {
			out[i] = ui.PoolEntry{
				Symbol:   r.Symbol,
				Asset:    r.Asset.Hex(),
				Balance:  formatUnits(r.Balance, r.Decimals),
				Approved: r.Approved,
				Wrapped:  r.Asset == wrapped,
			}
		}
		return out, nil
	})
	_, err := prog.Run()
	return err
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "live per-asset dashboard")
}
