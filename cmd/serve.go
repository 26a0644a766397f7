package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/events"
	"github.com/Mohsinsiddi/w3pool/internal/server"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only pool API daemon",
	Long: `Serve the pool's state over HTTP: balances, approvals, the event
journal, a live websocket event stream and Prometheus metrics.

The daemon never mutates the pool — donations and claims stay in the CLI.
It tails the event journal, so operations committed by other processes
stream out over /ws/events as they land. The approval registry is read at
startup; restart the daemon after changing approvals (per-asset approved
flags on /api/v1/balances are always live).

Configuration comes from the environment:
  W3POOL_SERVE_ADDR     listen address (default :8546)
  W3POOL_LOG_LEVEL      DEBUG, INFO, WARN, ERROR (default INFO)
  W3POOL_POLL_INTERVAL  journal poll interval (default 2s)

Endpoints:
  GET /api/v1/status
  GET /api/v1/balances
  GET /api/v1/approvals
  GET /api/v1/events?limit=N
  GET /ws/events
  GET /health
  GET /metrics

Examples:
  w3pool serve
  w3pool serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srvCfg, err := server.ConfigFromEnv()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			srvCfg.Addr = serveAddr
		}
		logger, err := server.Logger(srvCfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}

		broker := events.NewBroker()
		follower, err := events.NewFollower(s.journal, broker, srvCfg.PollInterval)
		if err != nil {
			return err
		}
		go func() { _ = follower.Run(ctx) }()

		srv := server.New(srvCfg, server.Deps{
			Pool:    s.pool,
			Journal: s.journal,
			Broker:  broker,
			Assets:  serveBalances,
			Backend: cfg.Backend,
			Logger:  logger,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		fmt.Println(ui.Success(fmt.Sprintf("Pool API listening on %s — Ctrl-C to stop", srvCfg.Addr)))

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), config.ServeStopTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Stop(stopCtx)
	},
}

// serveBalances opens a fresh session per request so balances written by
// other processes (devnet donations, claims) are visible to the API.
func serveBalances(ctx context.Context) ([]server.AssetInfo, error) {
	live, err := openSession(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows, err := live.poolAssets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]server.AssetInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, server.AssetInfo{
			Asset:    r.Asset.Hex(),
			Symbol:   r.Symbol,
			Decimals: r.Decimals,
			Balance:  r.Balance.String(),
			Approved: r.Approved,
		})
	}
	return out, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides W3POOL_SERVE_ADDR)")
}
