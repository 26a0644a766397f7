package cmd

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/ledger"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

// poolWalletName is the signing wallet that acts as the pool's custodial
// account.
const poolWalletName = "pool"

// devnetSeed is the native balance minted to the owner on devnet init, so
// donations work straight away.
var devnetSeed = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))

var (
	initBackend string
	initOwner   string
	initSymbol  string
	initRPC     string
	initWrapped string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up a donation pool",
	Long: `Create the pool: its owner wallet, its custodial account, and the backend
it runs on.

Without flags an interactive wizard walks through the choices. Passing
--backend skips the wizard entirely:

  # Local devnet pool, unattended
  w3pool init --backend devnet --owner alice --symbol WDEV

  # Pool on a live chain
  w3pool init --backend chain --rpc https://rpc.example.org \
      --wrapped 0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2

The devnet backend deploys a fresh wrapped-native token and seeds the owner
with native currency. The chain backend binds to an existing wrapped-coin
contract; fund the generated pool account so it can pay gas when claiming.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, err := cfg.LoadPool()
		if err != nil {
			return fmt.Errorf("reading pool state: %w", err)
		}
		if pf.Initialized() && !initForce {
			return fmt.Errorf("a pool already exists (owner %s) — pass --force to replace it", pf.Owner)
		}

		res, err := collectSetup()
		if err != nil {
			return err
		}

		mgr := newWalletManager()
		owner, err := ensureSigningWallet(mgr, res.OwnerWallet)
		if err != nil {
			return err
		}
		poolW, err := ensureSigningWallet(mgr, poolWalletName)
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(owner.Name); err != nil {
			return err
		}

		cfg.Backend = res.Backend
		cfg.RPCURL = res.RPCURL
		cfg.DefaultWallet = owner.Name
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		// A replaced pool starts from a clean slate.
		os.Remove(cfg.LedgerPath()) //nolint:errcheck
		os.Remove(cfg.EventsPath()) //nolint:errcheck

		newPF := &config.PoolFile{
			Owner:     owner.Address,
			Account:   poolW.Address,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}

		var wrappedLabel string
		switch res.Backend {
		case config.BackendDevnet:
			led, err := ledger.New(ledger.WithStore(ledger.NewJSONStore(cfg.LedgerPath())))
			if err != nil {
				return fmt.Errorf("creating devnet ledger: %w", err)
			}
			wrappedAddr, err := led.DeployWrapped(common.HexToAddress(owner.Address), res.WrappedSymbol, nativeDecimals)
			if err != nil {
				return fmt.Errorf("deploying wrapped token: %w", err)
			}
			if err := led.MintNative(common.HexToAddress(owner.Address), devnetSeed); err != nil {
				return fmt.Errorf("seeding owner balance: %w", err)
			}
			if err := led.Save(); err != nil {
				return fmt.Errorf("saving devnet ledger: %w", err)
			}
			newPF.Wrapped = wrappedAddr.Hex()
			wrappedLabel = res.WrappedSymbol + "  " + ui.TruncateAddr(wrappedAddr.Hex())

		case config.BackendChain:
			newPF.Wrapped = common.HexToAddress(res.WrappedAddr).Hex()
			wrappedLabel = ui.TruncateAddr(newPF.Wrapped)
		}

		if err := cfg.SavePool(newPF); err != nil {
			return fmt.Errorf("saving pool state: %w", err)
		}

		fmt.Println(ui.KeyValueBlock("Pool Initialized", [][2]string{
			{"Backend", ui.Val(res.Backend)},
			{"Owner", ui.Val(owner.Name) + "  " + ui.Addr(owner.Address)},
			{"Pool account", ui.Addr(poolW.Address)},
			{"Wrapped token", ui.Val(wrappedLabel)},
			{"Config", ui.Meta(cfg.Dir())},
		}))

		switch res.Backend {
		case config.BackendDevnet:
			fmt.Println(ui.Success(fmt.Sprintf("Owner seeded with %s native — try `w3pool donate --native 1`",
				formatUnits(devnetSeed, nativeDecimals))))
		case config.BackendChain:
			fmt.Println(ui.Warn("Fund the pool account with native currency so it can pay gas when claiming."))
		}
		fmt.Println(ui.Hint("Private keys live in the OS keychain — export with `w3pool wallet export <name>`"))
		return nil
	},
}

// collectSetup gathers setup answers from flags, or from the interactive
// wizard when --backend was not given, and validates them.
func collectSetup() (*ui.WizardResult, error) {
	var res *ui.WizardResult

	if initBackend != "" {
		res = &ui.WizardResult{
			Backend:       initBackend,
			OwnerWallet:   initOwner,
			WrappedSymbol: strings.ToUpper(initSymbol),
			RPCURL:        initRPC,
			WrappedAddr:   initWrapped,
		}
	} else {
		fmt.Println(ui.Banner())
		var err error
		res, err = ui.RunWizard()
		if err != nil {
			return nil, err
		}
	}

	if res.Backend == "" {
		return nil, fmt.Errorf("setup cancelled")
	}
	if res.OwnerWallet == "" {
		res.OwnerWallet = "owner"
	}
	if res.WrappedSymbol == "" {
		res.WrappedSymbol = "WDEV"
	}

	switch res.Backend {
	case config.BackendDevnet:
	case config.BackendChain:
		if res.RPCURL == "" {
			return nil, fmt.Errorf("chain backend needs a JSON-RPC endpoint (--rpc)")
		}
		if !isHexAddress(res.WrappedAddr) {
			return nil, fmt.Errorf("chain backend needs the wrapped token contract address (--wrapped 0x...)")
		}
	default:
		return nil, fmt.Errorf("unknown backend %q — use %q or %q",
			res.Backend, config.BackendDevnet, config.BackendChain)
	}
	return res, nil
}

// ensureSigningWallet returns the named signing wallet, generating a fresh
// key when the name is unused.
func ensureSigningWallet(mgr *wallet.Manager, name string) (*wallet.Wallet, error) {
	if w, err := mgr.Get(name); err == nil {
		if w.Type != wallet.TypeSigning {
			return nil, fmt.Errorf("wallet %q exists but is watch-only — remove it or pick another name", name)
		}
		fmt.Println(ui.Info(fmt.Sprintf("Reusing existing wallet %q (%s)", name, ui.TruncateAddr(w.Address))))
		return w, nil
	}
	w, _, err := mgr.Generate(name)
	if err != nil {
		return nil, fmt.Errorf("generating wallet %q: %w", name, err)
	}
	return w, nil
}

func init() {
	initCmd.Flags().StringVar(&initBackend, "backend", "", "skip the wizard: \"devnet\" or \"chain\"")
	initCmd.Flags().StringVar(&initOwner, "owner", "owner", "name for the owner wallet")
	initCmd.Flags().StringVar(&initSymbol, "symbol", "WDEV", "wrapped-native token symbol (devnet)")
	initCmd.Flags().StringVar(&initRPC, "rpc", "", "JSON-RPC endpoint (chain backend)")
	initCmd.Flags().StringVar(&initWrapped, "wrapped", "", "wrapped token contract address (chain backend)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing pool")
}
