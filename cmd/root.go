package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3pool/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "w3pool",
	Short: "Custodial donation pool for EVM assets",
	Long: `w3pool — terminal-first donation pool for native coin and ERC-20 tokens.

  Run a pool on the built-in devnet ledger or against a live JSON-RPC
  endpoint. Curate the approved asset list, accept donations in native
  coin (wrapped on arrival), wrapped coin and approved tokens, and
  claim the accumulated funds as the pool owner.

Start with: w3pool init`,
	Version: Version,
	// Command errors name their own fix; the full usage dump would bury it.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// W3POOL_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("W3POOL_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3pool)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Pool lifecycle.
	rootCmd.AddCommand(initCmd, statusCmd, serveCmd)
	// Moving funds.
	rootCmd.AddCommand(donateCmd, claimCmd, tokenCmd)
	// Registry and wallets.
	rootCmd.AddCommand(approveCmd, approvalsCmd, walletCmd)
	// Inspection.
	rootCmd.AddCommand(balanceCmd, eventsCmd, watchCmd)
	// Devnet and utilities.
	rootCmd.AddCommand(devnetCmd, checksumCmd, convertCmd)
}
