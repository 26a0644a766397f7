package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/chain"
	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

var (
	donateNative  string
	donateWrapped string
	donateToken   string
	donateAmount  string
	donateWallet  string
	donateYes     bool
)

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Donate to the pool",
	Long: `Send funds into the pool from the active wallet.

Native currency is wrapped on arrival and held as the wrapped token, so one
donation can combine a native leg and a wrapped leg:

  w3pool donate --native 1.5                # native only
  w3pool donate --wrapped 2                 # wrapped tokens only
  w3pool donate --native 1 --wrapped 0.5    # both, recorded as one donation

Approved ERC-20 tokens are donated by address (or devnet symbol):

  w3pool donate --token USDP --amount 250
  w3pool donate --token 0xA0b8...eB48 --amount 99.5

On devnet, token and wrapped donations draw on an allowance granted to the
pool account — grant one first with ` + "`w3pool token approve`" + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if donateToken == "" && donateNative == "" && donateWrapped == "" {
			return fmt.Errorf("nothing to donate — pass --native, --wrapped and/or --token with --amount")
		}

		ctx := context.Background()
		donor, _, err := activeWallet(donateWallet)
		if err != nil {
			return err
		}

		var signer *wallet.Signer
		if cfg.Backend == config.BackendChain {
			warnIfNoSession()
			if signer, err = chainSigner(donor); err != nil {
				return err
			}
		}
		s, err := openSession(ctx, signer)
		if err != nil {
			return err
		}

		if donateToken != "" {
			return runDonateToken(ctx, s, donor)
		}
		return runDonateNative(ctx, s, donor)
	},
}

// runDonateToken moves an approved ERC-20 donation into the pool.
func runDonateToken(ctx context.Context, s *poolSession, donor *wallet.Wallet) error {
	asset, err := resolveAsset(s, donateToken)
	if err != nil {
		return err
	}
	if asset == s.pool.WrappedAsset() {
		return fmt.Errorf("that is the wrapped-native token — donate it with --wrapped instead")
	}
	m, err := s.assetMeta(ctx, asset)
	if err != nil {
		return fmt.Errorf("resolving token %s: %w", asset.Hex(), err)
	}
	amount, err := parseUnits(donateAmount, m.Decimals)
	if err != nil {
		return err
	}

	donorAddr := common.HexToAddress(donor.Address)
	if err := devnetDonorChecks(ctx, s, donorAddr, asset, amount); err != nil {
		return err
	}

	prompt := fmt.Sprintf("Donate %s %s from %q to the pool?",
		formatUnits(amount, m.Decimals), m.Symbol, donor.Name)
	if !donateYes && !ui.Confirm(prompt) {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}

	sp := ui.NewSpinner("Sending donation…")
	sp.Start()
	ev, err := s.pool.DonateToken(ctx, donorAddr, asset, amount)
	sp.Stop()
	if err != nil {
		return donateErr(err)
	}
	if err := s.persist(); err != nil {
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("Donated %s %s — thank you!",
		formatUnits(ev.Amount, m.Decimals), m.Symbol)))
	return nil
}

// runDonateNative moves a native and/or wrapped donation into the pool.
func runDonateNative(ctx context.Context, s *poolSession, donor *wallet.Wallet) error {
	value, wrappedAmt := big.NewInt(0), big.NewInt(0)
	var err error
	if donateNative != "" {
		if value, err = parseUnits(donateNative, nativeDecimals); err != nil {
			return err
		}
	}
	if donateWrapped != "" {
		if wrappedAmt, err = parseUnits(donateWrapped, nativeDecimals); err != nil {
			return err
		}
	}
	total := new(big.Int).Add(value, wrappedAmt)
	if total.Sign() == 0 {
		return fmt.Errorf("donation amount is zero")
	}

	wrapped := s.pool.WrappedAsset()
	symbol := "wrapped"
	if m, err := s.assetMeta(ctx, wrapped); err == nil {
		symbol = m.Symbol
	}
	donorAddr := common.HexToAddress(donor.Address)

	// Devnet preflight so failures name the fix instead of the ledger rule.
	if s.ledger != nil {
		if value.Sign() > 0 {
			bal := s.ledger.NativeBalanceOf(donorAddr)
			if bal.Cmp(value) < 0 {
				return fmt.Errorf("wallet %q holds %s native but the donation needs %s — top up with `w3pool devnet fund %s <amount>`",
					donor.Name, formatUnits(bal, nativeDecimals), formatUnits(value, nativeDecimals), donor.Name)
			}
		}
		if wrappedAmt.Sign() > 0 {
			if err := devnetDonorChecks(ctx, s, donorAddr, wrapped, wrappedAmt); err != nil {
				return err
			}
		}
	}

	var legs []string
	if value.Sign() > 0 {
		legs = append(legs, formatUnits(value, nativeDecimals)+" native")
	}
	if wrappedAmt.Sign() > 0 {
		legs = append(legs, formatUnits(wrappedAmt, nativeDecimals)+" "+symbol)
	}
	prompt := fmt.Sprintf("Donate %s from %q to the pool?", strings.Join(legs, " + "), donor.Name)
	if !donateYes && !ui.Confirm(prompt) {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}

	// A chain cannot debit the donor's native balance, so the donor wraps
	// first and the whole donation moves as wrapped tokens.
	if s.client != nil && value.Sign() > 0 {
		sp := ui.NewSpinner("Wrapping native…")
		sp.Start()
		weth := chain.NewWETH(s.client, s.sender, wrapped)
		err := weth.Deposit(ctx, value)
		sp.Stop()
		if err != nil {
			return fmt.Errorf("wrapping native: %w", err)
		}
		wrappedAmt = total
		value = big.NewInt(0)
	}

	sp := ui.NewSpinner("Sending donation…")
	sp.Start()
	ev, err := s.pool.DonateNative(ctx, donorAddr, wrappedAmt, value)
	sp.Stop()
	if err != nil {
		return donateErr(err)
	}
	if err := s.persist(); err != nil {
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("Donated %s %s — thank you!",
		formatUnits(ev.Amount, nativeDecimals), symbol)))
	return nil
}

// devnetDonorChecks verifies the donor's balance and pool allowance on the
// devnet ledger before the engine runs. No-op on the chain backend, where
// the donor signs the transfer directly and needs no allowance.
func devnetDonorChecks(ctx context.Context, s *poolSession, donor, asset common.Address, amount *big.Int) error {
	if s.ledger == nil {
		return nil
	}
	m, err := s.assetMeta(ctx, asset)
	if err != nil {
		return err
	}
	tok, err := s.ledger.Token(asset, donor)
	if err != nil {
		return err
	}

	bal, err := tok.BalanceOf(ctx, donor)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("wallet holds %s %s but the donation needs %s",
			formatUnits(bal, m.Decimals), m.Symbol, formatUnits(amount, m.Decimals))
	}

	allowance, err := tok.Allowance(ctx, donor, s.pool.Account())
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"pool allowance is %s %s but the donation needs %s — grant it with `w3pool token approve %s %s`",
			formatUnits(allowance, m.Decimals), m.Symbol, formatUnits(amount, m.Decimals),
			m.Symbol, donateAmountOr(formatUnits(amount, m.Decimals)))
	}
	return nil
}

// donateAmountOr returns the user's --amount text when set, else the fallback.
func donateAmountOr(fallback string) string {
	if donateAmount != "" {
		return donateAmount
	}
	return fallback
}

// donateErr turns typed engine failures into errors that name the fix.
func donateErr(err error) error {
	var notApproved *pool.NotApprovedError
	if errors.As(err, &notApproved) {
		return fmt.Errorf("%v — the owner can add it with `w3pool approve %s`",
			err, notApproved.Asset.Hex())
	}
	if errors.Is(err, pool.ErrZeroAmount) {
		return fmt.Errorf("donation amount is zero")
	}
	return err
}

func init() {
	donateCmd.Flags().StringVar(&donateNative, "native", "", "native amount to donate (wrapped on arrival)")
	donateCmd.Flags().StringVar(&donateWrapped, "wrapped", "", "wrapped-token amount to donate")
	donateCmd.Flags().StringVar(&donateToken, "token", "", "ERC-20 asset to donate (address or devnet symbol)")
	donateCmd.Flags().StringVar(&donateAmount, "amount", "", "token amount, in token units")
	donateCmd.Flags().StringVar(&donateWallet, "wallet", "", "donating wallet (default: configured default)")
	donateCmd.Flags().BoolVarP(&donateYes, "yes", "y", false, "skip the confirmation prompt")
	donateCmd.MarkFlagsRequiredTogether("token", "amount")
	donateCmd.MarkFlagsMutuallyExclusive("token", "native")
	donateCmd.MarkFlagsMutuallyExclusive("token", "wrapped")
}
