package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/chain"
	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

var tokenApproveWallet string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect tokens and manage pool allowances",
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info <asset>",
	Short: "Show a token and its standing with the pool",
	Args:  cobra.ExactArgs(1),
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

		sp := ui.NewSpinner("Fetching token info…")
		sp.Start()
		m, err := s.assetMeta(ctx, asset)
		if err != nil {
			sp.Stop()
			return fmt.Errorf("resolving token %s: %w", asset.Hex(), err)
		}
		bal, err := s.pool.Balance(ctx, asset)
		sp.Stop()
		if err != nil {
			return fmt.Errorf("reading pool balance: %w", err)
		}

		status := ui.StyleDim.Render("not approved")
		if s.pool.IsApproved(asset) {
			status = ui.StyleSuccess.Render("approved")
		}
		pairs := [][2]string{
			{"Asset", ui.Addr(asset.Hex())},
			{"Symbol", ui.Val(m.Symbol)},
			{"Decimals", ui.Val(fmt.Sprintf("%d", m.Decimals))},
			{"Pool balance", ui.Val(formatUnits(bal, m.Decimals) + " " + m.Symbol)},
			{"Registry", status},
		}

		// Show the active wallet's standing allowance when one is configured.
		if holder, _, err := activeWallet(""); err == nil {
			if allowance, err := holderAllowance(ctx, s, common.HexToAddress(holder.Address), asset); err == nil {
				pairs = append(pairs, [2]string{
					fmt.Sprintf("Allowance (%s)", holder.Name),
					ui.Val(formatUnits(allowance, m.Decimals) + " " + m.Symbol),
				})
			}
		}

		fmt.Println(ui.KeyValueBlock("Token · "+m.Symbol, pairs))
		return nil
	},
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <asset> <amount>",
	Short: "Grant the pool an allowance from the active wallet",
	Long: `Let the pool account draw up to <amount> of a token from the active
wallet. On devnet every token and wrapped donation is pulled through this
allowance, so grant it before donating:

  w3pool token approve USDP 500
  w3pool donate --token USDP --amount 250

On the chain backend this signs a real approve transaction. Chain donations
move funds directly and don't need it, but other integrations might.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		holder, _, err := activeWallet(tokenApproveWallet)
		if err != nil {
			return err
		}
		var signer *wallet.Signer
		if cfg.Backend == config.BackendChain {
			warnIfNoSession()
			if signer, err = chainSigner(holder); err != nil {
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
			return fmt.Errorf("resolving token %s: %w", asset.Hex(), err)
		}
		amount, err := parseUnits(args[1], m.Decimals)
		if err != nil {
			return err
		}
		holderAddr := common.HexToAddress(holder.Address)

		sp := ui.NewSpinner("Granting allowance…")
		sp.Start()
		var ok bool
		if s.ledger != nil {
			tok, terr := s.ledger.Token(asset, holderAddr)
			if terr != nil {
				sp.Stop()
				return terr
			}
			ok, err = tok.Approve(ctx, s.pool.Account(), amount)
		} else {
			tok := chain.NewERC20(s.client, s.sender, asset)
			ok, err = tok.Approve(ctx, s.pool.Account(), amount)
		}
		sp.Stop()
		if err != nil {
			return fmt.Errorf("granting allowance: %w", err)
		}
		if !ok {
			return fmt.Errorf("the token rejected the approval")
		}
		if err := s.persist(); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Pool may now draw up to %s %s from %q.",
			formatUnits(amount, m.Decimals), m.Symbol, holder.Name)))
		return nil
	},
}

// holderAllowance reads how much the pool may draw from holder for asset.
func holderAllowance(ctx context.Context, s *poolSession, holder, asset common.Address) (*big.Int, error) {
	if s.ledger != nil {
		tok, err := s.ledger.Token(asset, holder)
		if err != nil {
			return nil, err
		}
		return tok.Allowance(ctx, holder, s.pool.Account())
	}
	return chain.NewERC20(s.client, nil, asset).Allowance(ctx, holder, s.pool.Account())
}

func init() {
	tokenApproveCmd.Flags().StringVar(&tokenApproveWallet, "wallet", "", "wallet granting the allowance (default: configured default)")
	tokenCmd.AddCommand(tokenInfoCmd, tokenApproveCmd)
}
