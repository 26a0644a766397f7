package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

// Two wallet roles matter here: donor wallets sign donations, and the pool
// owner wallet signs approvals and claims. Watch-only entries are address
// bookmarks that can receive claims but never sign.

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage donor and owner wallets",
}

var walletAddKey string

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Register a wallet (watch-only, or signing with --key)",
	Long: `Register a wallet for pool operations.

With an address argument the wallet is watch-only: usable as a claim
recipient, but unable to sign. With --key the private key is stored in the
OS keychain and the address derived from it, so the wallet can sign
donations and, when it is the pool owner, claims.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if walletAddKey != "" {
			return addSigningWallet(name, walletAddKey)
		}
		if len(args) < 2 {
			return fmt.Errorf("watch-only wallets need an address\n  Usage: w3pool wallet add %s <address>\n  Or for a signing wallet: w3pool wallet add %s --key <private-key>", name, name)
		}
		return addWatchOnlyWallet(name, args[1])
	},
}

func addSigningWallet(name, hexKey string) error {
	mgr := newWalletManager()
	if err := mgr.AddWithKey(name, hexKey); err != nil {
		return err
	}
	w, err := mgr.Get(name)
	if err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
	fmt.Println(ui.Hint(fmt.Sprintf("Make it the default signer with: w3pool wallet use %s", name)))
	return nil
}

func addWatchOnlyWallet(name, address string) error {
	mgr := newWalletManager()
	w := &wallet.Wallet{Name: name, Address: address, Type: wallet.TypeWatchOnly}
	if err := mgr.Add(name, w); err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(address))))
	fmt.Println(ui.Hint(fmt.Sprintf("It can receive claims (w3pool claim <asset> --to %s) but cannot sign.", name)))
	return nil
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Run `w3pool init`, or register one with: w3pool wallet add donor 0xYourAddress"))
			return nil
		}

		// Mark the pool owner when a pool exists. List still works before
		// init, so a load failure just drops the marker.
		ownerAddr := ""
		if pf, err := cfg.LoadPool(); err == nil && pf.Initialized() {
			ownerAddr = pf.Owner
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		sawOwner := false
		for _, w := range wallets {
			name := w.Name
			if ownerAddr != "" && strings.EqualFold(w.Address, ownerAddr) {
				name += " ★"
				sawOwner = true
			}
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		if sawOwner {
			fmt.Println(ui.Meta("★ pool owner"))
		}
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		prompt := fmt.Sprintf("Remove wallet %q?", name)
		if w, err := mgr.Get(name); err == nil {
			if pf, perr := cfg.LoadPool(); perr == nil && pf.Initialized() && strings.EqualFold(w.Address, pf.Owner) {
				prompt = fmt.Sprintf("%q is the POOL OWNER wallet. Approvals and claims need its key. Remove anyway?", name)
			}
		}
		if !ui.ConfirmDanger(prompt) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		if err := mgr.Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default signing wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		cfg.Save() //nolint:errcheck
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("Donations and claims sign with it unless --wallet overrides."))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a fresh signing wallet",
	Long: `Generate a new keypair and store the private key in the OS keychain.

The key is displayed ONCE, right after creation. Store it in a password
manager: a lost key means a lost wallet, and for the pool owner it means
the pool funds are stuck.

Re-export later with: w3pool wallet export <name>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		w, hexKey, err := newWalletManager().Generate(name)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
		fmt.Printf("  %s  %s\n\n", ui.Meta("Address:"), ui.Addr(w.Address))

		fmt.Println(ui.DangerBox(
			ui.Warn("SAVE YOUR PRIVATE KEY — shown only once. Never share it.") + "\n\n" +
				ui.Val(hexKey) + "\n\n" +
				ui.Hint("Store it in a password manager before doing anything else."),
		))
		fmt.Println(ui.Hint("  Re-export anytime: w3pool wallet export " + name))
		fmt.Println()
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Re-export the private key of a signing wallet",
	Long: `Retrieve and display the stored private key for a signing wallet.

You must type the wallet name exactly to confirm before the key is shown.
The key comes from the OS keychain and never leaves this machine.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		fmt.Println()
		fmt.Println(ui.Warn("  You are about to reveal a private key. Keep it secret."))
		fmt.Println()
		if input := ui.PromptInput(fmt.Sprintf("  Type wallet name %q to confirm", name)); input != name {
			fmt.Println()
			fmt.Println(ui.Err("  Name mismatch — export cancelled."))
			return nil
		}

		hexKey, err := newWalletManager().ExportKey(name)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(ui.DangerBox(
			ui.Warn("PRIVATE KEY — do not share this with anyone.") + "\n\n" +
				ui.Val(hexKey),
		))
		fmt.Println()
		return nil
	},
}

var walletUnlockAll bool

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet key(s) for the session (skips future keychain prompts)",
	Long: `Retrieve private keys from the OS keychain once and cache them in a
restricted session file, so donate and claim run without any prompt.

  # Interactive — pick a wallet from a list
  w3pool wallet unlock

  # Unlock one wallet by name
  w3pool wallet unlock owner

  # Unlock every signing wallet at once
  w3pool wallet unlock --all

The OS may prompt once per wallet during unlock:
  macOS        — Keychain Access GUI dialog
  Ubuntu (GUI) — GNOME Keyring password popup
  Ubuntu (SSH) — terminal passphrase for the file backend
  Windows      — silent (Credential Manager handles it)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		signing := mgr.Signers()
		if len(signing) == 0 {
			fmt.Println(ui.Info("No signing wallets found."))
			fmt.Println(ui.Hint("Add one with: w3pool wallet add <name> --key <private-key>"))
			return nil
		}

		var targets []*wallet.Wallet
		switch {
		case walletUnlockAll:
			targets = signing
		case len(args) > 0:
			w, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			if w.Type != wallet.TypeSigning {
				return fmt.Errorf("wallet %q is watch-only, there is no key to unlock", args[0])
			}
			targets = []*wallet.Wallet{w}
		default:
			picked, err := pickUnlockTarget(signing)
			if err != nil || picked == nil {
				if picked == nil && err == nil {
					fmt.Println(ui.Meta("Cancelled."))
				}
				return err
			}
			targets = []*wallet.Wallet{picked}
		}

		fmt.Println(ui.Info("Your OS keychain may prompt once per wallet being unlocked."))
		fmt.Println()

		// One snapshot up front and one bulk write at the end, instead of a
		// file round trip per wallet.
		cached := wallet.LoadSessionSnapshot()
		ks := wallet.DefaultKeystore()

		var unlocked, skipped int
		newKeys := make(map[string]string)
		for _, w := range targets {
			if _, ok := cached[w.KeyRef]; ok {
				fmt.Println(ui.Meta(fmt.Sprintf("  %-20s already cached", w.Name)))
				skipped++
				continue
			}
			hexKey, err := ks.Retrieve(w.KeyRef) // OS prompt fires here if needed
			if err != nil {
				fmt.Println(ui.Err(fmt.Sprintf("  %-20s %v", w.Name, err)))
				continue
			}
			newKeys[w.KeyRef] = hexKey
			fmt.Println(ui.Success(fmt.Sprintf("  %-20s unlocked", w.Name)))
			unlocked++
		}
		wallet.BulkPutSessionKeys(newKeys)

		fmt.Println()
		if unlocked > 0 {
			fmt.Println(ui.Success(fmt.Sprintf(
				"%d wallet(s) cached. Zero prompts until 'w3pool wallet lock'.", unlocked)))
		}
		if skipped > 0 {
			fmt.Println(ui.Meta(fmt.Sprintf("  %d already cached, skipped.", skipped)))
		}
		return nil
	},
}

// pickUnlockTarget runs the interactive picker over the signing wallets.
// Returns (nil, nil) when the user cancels.
func pickUnlockTarget(signing []*wallet.Wallet) (*wallet.Wallet, error) {
	byName := make(map[string]*wallet.Wallet, len(signing))
	items := make([]ui.PickerItem, len(signing))
	for i, w := range signing {
		byName[w.Name] = w
		sub := ui.TruncateAddr(w.Address)
		if wallet.GetSessionKeyCached(w.Name) {
			sub += "  " + ui.Meta("[cached]")
		}
		items[i] = ui.PickerItem{Label: w.Name, SubLabel: sub, Value: w.Name}
	}
	picked, err := ui.PickItem("Unlock Wallet  ·  select to cache key", items)
	if err != nil || picked == "" {
		return nil, err
	}
	return byName[picked], nil
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session cache (re-enables keychain prompts)",
	Long:  `Delete the session file written by 'w3pool wallet unlock'. The next signing operation will prompt the OS keychain again.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wallet.SessionActive() {
			fmt.Println(ui.Meta("No active session — nothing to clear."))
			return nil
		}
		if err := wallet.ClearSession(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println(ui.Success("Session cleared. Keychain will be used on next access."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletAddKey, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock all signing wallets")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletGenerateCmd, walletExportCmd, walletUnlockCmd, walletLockCmd)
}

// warnIfNoSession prints a one-line hint when no session file is active.
// Chain-backend commands that are about to sign call it so the user knows
// why the OS keychain dialog appears.
func warnIfNoSession() {
	if cfg.Backend != config.BackendChain {
		return // devnet signing never touches the keychain
	}
	if !wallet.SessionActive() {
		fmt.Println(ui.Info(
			"No session active — keychain may prompt for each tx.\n" +
				"  Run 'w3pool wallet unlock --all' once to cache all keys and skip future prompts.",
		))
		fmt.Println()
	}
}

// walletTypeLabel converts an internal wallet type to a display label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t // "watch-only" reads fine as is
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}
