package cmd

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/chain"
	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/ens"
	"github.com/Mohsinsiddi/w3pool/internal/events"
	"github.com/Mohsinsiddi/w3pool/internal/ledger"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

// nativeDecimals is the precision of the native currency on every backend.
const nativeDecimals = 18

// poolSession bundles the donation engine and its collaborators for one
// command invocation. Exactly one of ledger/client is set, matching the
// configured backend.
type poolSession struct {
	file    *config.PoolFile
	pool    *pool.Pool
	journal *events.Log

	ledger *ledger.Ledger // devnet backend
	client *chain.Client  // chain backend
	sender *chain.Sender  // chain backend, only when a signer was attached

	meta map[common.Address]tokenMeta // symbol/decimals cache
}

type tokenMeta struct {
	Symbol   string
	Decimals uint8
}

// openSession loads the pool state and builds the engine for the configured
// backend. On the chain backend, transactions are signed by the given signer;
// pass nil for read-only access. The devnet ledger needs no signer — it is
// local trusted state, like the chain itself.
func openSession(ctx context.Context, signer *wallet.Signer) (*poolSession, error) {
	pf, err := cfg.LoadPool()
	if err != nil {
		return nil, fmt.Errorf("reading pool state: %w", err)
	}
	if !pf.Initialized() {
		return nil, fmt.Errorf("no pool configured — run `w3pool init` first")
	}

	s := &poolSession{
		file:    pf,
		journal: events.NewLog(cfg.EventsPath()),
		meta:    make(map[common.Address]tokenMeta),
	}

	switch cfg.Backend {
	case config.BackendDevnet:
		led, err := ledger.New(ledger.WithStore(ledger.NewJSONStore(cfg.LedgerPath())))
		if err != nil {
			return nil, fmt.Errorf("opening devnet ledger: %w", err)
		}
		s.ledger = led
		s.pool, err = devnetPool(led, pf, s.journal)
		if err != nil {
			return nil, err
		}

	case config.BackendChain:
		if cfg.RPCURL == "" {
			return nil, fmt.Errorf("chain backend has no RPC endpoint — re-run `w3pool init`")
		}
		s.client = chain.NewClient(cfg.RPCURL)
		if signer != nil {
			chainID, err := resolveChainID(ctx, s.client)
			if err != nil {
				return nil, err
			}
			s.sender = chain.NewSender(s.client, signer, chainID, config.TxConfirmTimeout)
		}
		s.pool, err = chainPool(s.client, s.sender, pf, s.journal)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown backend %q in config — expected %q or %q",
			cfg.Backend, config.BackendDevnet, config.BackendChain)
	}

	return s, nil
}

// devnetPool builds the engine over the local ledger, with every binding
// acting as the pool account.
func devnetPool(led *ledger.Ledger, pf *config.PoolFile, rec pool.Recorder) (*pool.Pool, error) {
	account := common.HexToAddress(pf.Account)
	wrapped, err := led.WrappedToken(account)
	if err != nil {
		return nil, fmt.Errorf("devnet ledger has no wrapped token — re-run `w3pool init`: %w", err)
	}
	return pool.New(pool.Config{
		Owner:        common.HexToAddress(pf.Owner),
		Account:      account,
		Wrapped:      led.Wrapped(),
		WrappedToken: wrapped,
		Bank:         led.Bank(account),
		Tokens:       led.Resolver(account),
		Recorder:     rec,
		Approvals:    approvalAddrs(pf.Approvals),
	})
}

// chainPool builds the engine over JSON-RPC bindings. With a nil sender all
// bindings are read-only and any mutation fails with chain.ErrReadOnly.
func chainPool(client *chain.Client, sender *chain.Sender, pf *config.PoolFile, rec pool.Recorder) (*pool.Pool, error) {
	account := common.HexToAddress(pf.Account)
	wrappedAddr := common.HexToAddress(pf.Wrapped)
	return pool.New(pool.Config{
		Owner:        common.HexToAddress(pf.Owner),
		Account:      account,
		Wrapped:      wrappedAddr,
		WrappedToken: chain.NewWETH(client, sender, wrappedAddr),
		Bank:         chain.NewBank(client, sender, account),
		Tokens:       chain.NewResolver(client, sender),
		Recorder:     rec,
		Approvals:    approvalAddrs(pf.Approvals),
	})
}

// persist writes mutated state back to disk: devnet ledger balances, the
// approval registry, and any journal write failure held back by the recorder.
func (s *poolSession) persist() error {
	if s.ledger != nil {
		if err := s.ledger.Save(); err != nil {
			return fmt.Errorf("saving devnet ledger: %w", err)
		}
	}
	s.file.Approvals = approvalStrings(s.pool.Approvals())
	if err := cfg.SavePool(s.file); err != nil {
		return fmt.Errorf("saving pool state: %w", err)
	}
	if err := s.journal.Err(); err != nil {
		return fmt.Errorf("writing event journal: %w", err)
	}
	return nil
}

func approvalAddrs(in map[string]bool) map[common.Address]bool {
	if len(in) == 0 {
		return nil
	}
	out := make(map[common.Address]bool, len(in))
	for a, ok := range in {
		out[common.HexToAddress(a)] = ok
	}
	return out
}

func approvalStrings(in map[common.Address]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for a, ok := range in {
		out[a.Hex()] = ok
	}
	return out
}

// resolveChainID returns the configured chain id, querying the node once when
// the config doesn't pin one.
func resolveChainID(ctx context.Context, client *chain.Client) (*big.Int, error) {
	if cfg.ChainID != 0 {
		return new(big.Int).SetUint64(cfg.ChainID), nil
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying chain id: %w", err)
	}
	return id, nil
}

// --- actor resolution -------------------------------------------------------

// activeWallet resolves the wallet a command acts as: the --wallet flag if
// given, otherwise the configured default.
func activeWallet(flagName string) (*wallet.Wallet, *wallet.Manager, error) {
	mgr := newWalletManager()

	name := flagName
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name != "" {
		w, err := mgr.Get(name)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"wallet %q not found — run `w3pool wallet list` or add it with `w3pool wallet add`", name)
		}
		return w, mgr, nil
	}

	if w := mgr.Default(); w != nil {
		return w, mgr, nil
	}
	return nil, nil, fmt.Errorf(
		"no wallet selected — pass --wallet <name> or set a default with `w3pool wallet use <name>`")
}

// chainSigner builds a transaction signer for the chain backend. Devnet
// commands never need one.
func chainSigner(w *wallet.Wallet) (*wallet.Signer, error) {
	if w.Type != wallet.TypeSigning {
		return nil, fmt.Errorf(
			"wallet %q is watch-only and cannot sign — add a signing wallet with `w3pool wallet add <name> --key <private-key>`",
			w.Name)
	}
	return wallet.NewSigner(w, wallet.DefaultKeystore()), nil
}

// --- asset + recipient resolution -------------------------------------------

// resolveAsset turns a command-line asset argument into an address. Accepts a
// 0x address, the literal "wrapped" for the pool's wrapped-native token, and
// on the devnet backend a deployed token's symbol.
func resolveAsset(s *poolSession, arg string) (common.Address, error) {
	switch {
	case strings.EqualFold(arg, "wrapped"):
		return s.pool.WrappedAsset(), nil
	case isHexAddress(arg):
		return common.HexToAddress(arg), nil
	}

	if s.ledger != nil {
		for _, t := range s.ledger.ListTokens() {
			if strings.EqualFold(t.Symbol, arg) {
				return t.Address, nil
			}
		}
		return common.Address{}, fmt.Errorf(
			"unknown asset %q — use a 0x address, a deployed token symbol, or \"wrapped\"", arg)
	}
	return common.Address{}, fmt.Errorf("unknown asset %q — use a 0x address or \"wrapped\"", arg)
}

// resolveRecipient turns a claim destination into an address: a 0x address,
// an ENS name (chain backend), or the name of a local wallet.
func resolveRecipient(ctx context.Context, s *poolSession, arg string) (common.Address, error) {
	if isHexAddress(arg) {
		return common.HexToAddress(arg), nil
	}
	if s.client != nil && ens.IsName(arg) {
		addr, err := ens.Resolve(ctx, s.client, arg)
		if err != nil {
			return common.Address{}, fmt.Errorf("resolving %q: %w", arg, err)
		}
		return common.HexToAddress(addr), nil
	}
	if w, err := newWalletManager().Get(arg); err == nil {
		return common.HexToAddress(w.Address), nil
	}
	return common.Address{}, fmt.Errorf(
		"recipient %q is not a 0x address, an ENS name or a known wallet name", arg)
}

// isHexAddress reports whether s looks like a 0x-prefixed 20-byte address.
func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// --- token metadata ---------------------------------------------------------

// assetMeta resolves an asset's symbol and decimals through the session's
// backend, caching per address so event feeds don't re-query.
func (s *poolSession) assetMeta(ctx context.Context, asset common.Address) (tokenMeta, error) {
	if m, ok := s.meta[asset]; ok {
		return m, nil
	}

	var m tokenMeta
	if s.ledger != nil {
		tok, err := s.ledger.Token(asset, s.pool.Account())
		if err != nil {
			return tokenMeta{}, err
		}
		if m.Symbol, err = tok.Symbol(ctx); err != nil {
			return tokenMeta{}, err
		}
		if m.Decimals, err = tok.Decimals(ctx); err != nil {
			return tokenMeta{}, err
		}
	} else {
		tok := chain.NewERC20(s.client, nil, asset)
		var err error
		if m.Symbol, err = tok.Symbol(ctx); err != nil {
			return tokenMeta{}, err
		}
		if m.Decimals, err = tok.Decimals(ctx); err != nil {
			return tokenMeta{}, err
		}
	}

	s.meta[asset] = m
	return m, nil
}

// nativeBalance returns the pool account's unwrapped native balance.
func (s *poolSession) nativeBalance(ctx context.Context) (*big.Int, error) {
	if s.ledger != nil {
		return s.ledger.NativeBalanceOf(s.pool.Account()), nil
	}
	return s.client.GetBalance(ctx, s.pool.Account().Hex())
}

// assetRow is one asset's resolved state for table display.
type assetRow struct {
	Asset    common.Address
	Symbol   string
	Decimals uint8
	Balance  *big.Int
	Approved bool
}

// poolAssets walks every asset the pool can hold — all deployed devnet
// tokens, or the wrapped token plus the approval registry on chain — and
// resolves each one's pool balance.
func (s *poolSession) poolAssets(ctx context.Context) ([]assetRow, error) {
	var rows []assetRow

	for _, asset := range s.assetList() {
		m, err := s.assetMeta(ctx, asset)
		if err != nil {
			return nil, fmt.Errorf("resolving asset %s: %w", asset.Hex(), err)
		}
		bal, err := s.pool.Balance(ctx, asset)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", asset.Hex(), err)
		}
		rows = append(rows, assetRow{
			Asset:    asset,
			Symbol:   m.Symbol,
			Decimals: m.Decimals,
			Balance:  bal,
			Approved: s.pool.IsApproved(asset),
		})
	}
	return rows, nil
}

// assetList returns the addresses poolAssets walks, wrapped token first.
func (s *poolSession) assetList() []common.Address {
	wrapped := s.pool.WrappedAsset()
	out := []common.Address{wrapped}

	if s.ledger != nil {
		for _, t := range s.ledger.ListTokens() {
			if t.Address != wrapped {
				out = append(out, t.Address)
			}
		}
		return out
	}

	var rest []common.Address
	for asset := range s.pool.Approvals() {
		if asset != wrapped {
			rest = append(rest, asset)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		return rest[i].Hex() < rest[j].Hex()
	})
	return append(out, rest...)
}

// --- amounts ----------------------------------------------------------------

// parseUnits converts a human decimal amount ("1.5") into base units at the
// given precision. String math, not floats: a claim for "0.1" must hit the
// pool's base-unit balance exactly.
func parseUnits(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("amount must be positive, got %q", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ".") {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

// formatUnits renders base units at the given precision for display.
func formatUnits(amount *big.Int, decimals uint8) string {
	return chain.FormatUnits(amount, int(decimals))
}

// requireDevnet guards commands that only make sense on the local ledger.
func requireDevnet(cmd *cobra.Command, args []string) error {
	if cfg.Backend != config.BackendDevnet {
		return fmt.Errorf("`%s` only works on the devnet backend (configured: %s)", cmd.CommandPath(), cfg.Backend)
	}
	return nil
}
