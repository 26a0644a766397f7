package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

var (
	claimAmount string
	claimTo     string
	claimWallet string
	claimYes    bool
)

var claimCmd = &cobra.Command{
	Use:   "claim <asset>",
	Short: "Claim pool funds (owner only)",
	Long: `Release funds held by the pool to a recipient.

Without --amount the pool's entire balance of the asset is claimed. Claiming
the wrapped token pays out unwrapped native currency.

The recipient defaults to the calling owner wallet; --to accepts a 0x
address, a local wallet name, or (chain backend) an ENS name.

  w3pool claim wrapped                      # all native holdings, to the owner
  w3pool claim USDP --amount 100            # part of the USDP balance
  w3pool claim 0xA0b8...eB48 --to pool.eth  # full balance, to an ENS name

On the chain backend the outbound transfers are signed by the pool account
itself, so its key must be on this machine.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		caller, mgr, err := activeWallet(claimWallet)
		if err != nil {
			return err
		}

		var signer *wallet.Signer
		if cfg.Backend == config.BackendChain {
			warnIfNoSession()
			custodian, err := custodianWallet(mgr)
			if err != nil {
				return err
			}
			if signer, err = chainSigner(custodian); err != nil {
				return err
			}
		}
		s, err := openSession(ctx, signer)
		if err != nil {
			return err
		}

		asset, err := resolveAsset(s, args[0])
		if err != nil {
			return err
		}
		m, err := s.assetMeta(ctx, asset)
		if err != nil {
			return fmt.Errorf("resolving asset %s: %w", asset.Hex(), err)
		}

		recipient := common.HexToAddress(caller.Address)
		if claimTo != "" {
			if recipient, err = resolveRecipient(ctx, s, claimTo); err != nil {
				return err
			}
		}
		callerAddr := common.HexToAddress(caller.Address)

		var amount *big.Int
		var describe string
		if claimAmount == "" {
			bal, err := s.pool.Balance(ctx, asset)
			if err != nil {
				return fmt.Errorf("reading pool balance: %w", err)
			}
			describe = fmt.Sprintf("the full %s %s balance", formatUnits(bal, m.Decimals), m.Symbol)
		} else {
			if amount, err = parseUnits(claimAmount, m.Decimals); err != nil {
				return err
			}
			if amount.Sign() == 0 {
				return fmt.Errorf("claim amount is zero")
			}
			describe = fmt.Sprintf("%s %s", formatUnits(amount, m.Decimals), m.Symbol)
		}

		prompt := fmt.Sprintf("Claim %s to %s?", describe, ui.TruncateAddr(recipient.Hex()))
		if !claimYes && !ui.Confirm(prompt) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		sp := ui.NewSpinner("Claiming…")
		sp.Start()
		var ev pool.Event
		if amount == nil {
			ev, err = s.pool.ClaimFull(ctx, callerAddr, asset, recipient)
		} else {
			ev, err = s.pool.ClaimPartial(ctx, callerAddr, asset, recipient, amount)
		}
		sp.Stop()
		if err != nil {
			return claimErr(err, m.Symbol)
		}
		if err := s.persist(); err != nil {
			return err
		}

		paid := fmt.Sprintf("%s %s", formatUnits(ev.Amount, m.Decimals), m.Symbol)
		if asset == s.pool.WrappedAsset() {
			paid += " (paid out as native currency)"
		}
		fmt.Println(ui.Success(fmt.Sprintf("Claimed %s → %s", paid, ui.Addr(recipient.Hex()))))
		return nil
	},
}

// custodianWallet finds the signing wallet holding the pool account's key.
// Chain claims are outbound transfers from the pool account, so that key
// signs them.
func custodianWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	pf, err := cfg.LoadPool()
	if err != nil {
		return nil, fmt.Errorf("reading pool state: %w", err)
	}
	if !pf.Initialized() {
		return nil, fmt.Errorf("no pool configured — run `w3pool init` first")
	}
	for _, w := range mgr.List() {
		if strings.EqualFold(w.Address, pf.Account) {
			if w.Type != wallet.TypeSigning {
				return nil, fmt.Errorf("wallet %q matches the pool account but is watch-only — re-add it with its private key", w.Name)
			}
			return w, nil
		}
	}
	return nil, fmt.Errorf(
		"the pool account's key (%s) is not on this machine — chain claims are signed by the pool account itself\n  Import it with: w3pool wallet add pool --key <private-key>",
		ui.TruncateAddr(pf.Account))
}

// claimErr turns typed engine failures into errors that name the fix.
func claimErr(err error, symbol string) error {
	var unauthorized *pool.UnauthorizedError
	if errors.As(err, &unauthorized) {
		return fmt.Errorf("%v — claims require the owner wallet", err)
	}
	var notApproved *pool.NotApprovedError
	if errors.As(err, &notApproved) {
		return fmt.Errorf("%v — re-approve it with `w3pool approve %s` to release the balance",
			err, notApproved.Asset.Hex())
	}
	if errors.Is(err, pool.ErrZeroAmount) {
		return fmt.Errorf("pool holds no %s", symbol)
	}
	return err
}

func init() {
	claimCmd.Flags().StringVar(&claimAmount, "amount", "", "amount to claim (default: the full balance)")
	claimCmd.Flags().StringVar(&claimTo, "to", "", "recipient (default: the calling owner wallet)")
	claimCmd.Flags().StringVar(&claimWallet, "wallet", "", "owner wallet making the claim (default: configured default)")
	claimCmd.Flags().BoolVarP(&claimYes, "yes", "y", false, "skip the confirmation prompt")
}
