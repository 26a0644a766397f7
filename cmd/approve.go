package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var (
	approveRevoke bool
	approveWallet string
)

var approveCmd = &cobra.Command{
	Use:   "approve <asset>",
	Short: "Approve an asset for donation (owner only)",
	Long: `Add a token to the pool's approval registry, or remove it with --revoke.

Only approved tokens can be donated or claimed. The wrapped-native token is
approved from the start. Revoking keeps the pool's balance of the token but
blocks donations and claims of it until re-approved.

Examples:
  w3pool approve 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48
  w3pool approve USDP            # devnet: by deployed symbol
  w3pool approve USDP --revoke`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		caller, _, err := activeWallet(approveWallet)
		if err != nil {
			return err
		}
		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		asset, err := resolveAsset(s, args[0])
		if err != nil {
			return err
		}

		_, err = s.pool.SetApproval(common.HexToAddress(caller.Address), asset, !approveRevoke)
		var unauthorized *pool.UnauthorizedError
		if errors.As(err, &unauthorized) {
			return fmt.Errorf(
				"wallet %q (%s) is not the pool owner — approvals require the owner wallet (%s)",
				caller.Name, ui.TruncateAddr(caller.Address), ui.TruncateAddr(s.pool.Owner().Hex()))
		}
		if err != nil {
			return err
		}
		if err := s.persist(); err != nil {
			return err
		}

		label := assetLabel(ctx, s, asset)
		if approveRevoke {
			fmt.Println(ui.Success(fmt.Sprintf("Revoked %s — donations and claims of it are blocked.", label)))
			if asset == s.pool.WrappedAsset() {
				fmt.Println(ui.Warn("This is the wrapped-native token: native donations still wrap into it."))
			}
		} else {
			fmt.Println(ui.Success(fmt.Sprintf("Approved %s for donation.", label)))
		}
		return nil
	},
}

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Show the pool's approval registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}

		reg := s.pool.Approvals()
		assets := make([]common.Address, 0, len(reg))
		for a := range reg {
			assets = append(assets, a)
		}
		sort.Slice(assets, func(i, j int) bool {
			return assets[i].Hex() < assets[j].Hex()
		})

		t := ui.NewTable([]ui.Column{
			{Title: "Asset", Width: 44},
			{Title: "Symbol", Width: 10},
			{Title: "Status", Width: 10},
		})
		var approved int
		for _, a := range assets {
			status := ui.StyleDim.Render("revoked")
			if reg[a] {
				status = ui.StyleSuccess.Render("approved")
				approved++
			}
			sym := "—"
			if m, err := s.assetMeta(ctx, a); err == nil {
				sym = m.Symbol
			}
			if a == s.pool.WrappedAsset() {
				sym += " ◈"
			}
			t.AddRow(ui.Row{ui.Addr(a.Hex()), ui.Val(sym), status})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d approved · %d revoked · ◈ wrapped native", approved, len(assets)-approved)))
		return nil
	},
}

// assetLabel renders "SYMBOL (0x1234…abcd)" with a best-effort symbol lookup.
func assetLabel(ctx context.Context, s *poolSession, asset common.Address) string {
	if m, err := s.assetMeta(ctx, asset); err == nil {
		return fmt.Sprintf("%s (%s)", m.Symbol, ui.TruncateAddr(asset.Hex()))
	}
	return asset.Hex()
}

func init() {
	approveCmd.Flags().BoolVar(&approveRevoke, "revoke", false, "remove the asset from the registry instead")
	approveCmd.Flags().StringVar(&approveWallet, "wallet", "", "wallet acting as caller (default: configured default)")
}
