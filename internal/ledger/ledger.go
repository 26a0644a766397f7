package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Errors.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnknownToken          = errors.New("unknown token")
	ErrTokenExists           = errors.New("token already deployed")
	ErrNoWrapped             = errors.New("wrapped token not deployed")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// ReceiveHook runs after native currency lands on the account it is
// registered for via a plain send. Returning an error rolls the transfer
// back.
type ReceiveHook func(ctx context.Context, from common.Address, value *big.Int) error

// Ledger is the devnet asset backend: native currency accounts plus any
// number of deployed fungible tokens, one of which may be the wrapped-native
// token. Amounts are big integers in the asset's smallest unit.
type Ledger struct {
	mu      sync.Mutex
	native  map[common.Address]*big.Int
	tokens  map[common.Address]*token
	wrapped common.Address
	deploys uint64

	hooks map[common.Address]ReceiveHook

	store Store
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStore sets the persistence backend.
func WithStore(s Store) Option {
	return func(l *Ledger) {
		l.store = s
	}
}

// New builds a ledger and restores any state held by its store.
func New(opts ...Option) (*Ledger, error) {
	l := &Ledger{
		native: make(map[common.Address]*big.Int),
		tokens: make(map[common.Address]*token),
		hooks:  make(map[common.Address]ReceiveHook),
		store:  &memStore{},
	}
	for _, opt := range opts {
		opt(l)
	}
	state, err := l.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading ledger state: %w", err)
	}
	if state != nil {
		if err := l.restore(state); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Save writes the current state through the configured store.
func (l *Ledger) Save() error {
	return l.store.Save(l.Snapshot())
}

// SetReceiveHook registers the receive handler for an account. Passing nil
// clears it.
func (l *Ledger) SetReceiveHook(account common.Address, hook ReceiveHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hook == nil {
		delete(l.hooks, account)
		return
	}
	l.hooks[account] = hook
}

// --- native currency ---

// NativeBalanceOf returns an account's native balance.
func (l *Ledger) NativeBalanceOf(account common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.nativeBalance(account))
}

// MintNative credits freshly issued native currency to an account. This is
// the devnet faucet; there is no real-chain equivalent.
func (l *Ledger) MintNative(account common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.nativeBalance(account)
	bal.Add(bal, amount)
	return nil
}

// TransferNative moves value between accounts the way a plain send does:
// the recipient's receive hook runs and can reject the transfer, in which
// case the value is returned to the sender.
func (l *Ledger) TransferNative(ctx context.Context, from, to common.Address, value *big.Int) error {
	if err := l.moveNative(from, to, value); err != nil {
		return err
	}
	if hook := l.receiveHook(to); hook != nil {
		if err := hook(ctx, from, value); err != nil {
			l.moveNative(to, from, value) //nolint:errcheck
			return err
		}
	}
	return nil
}

// moveNative is the hookless primitive behind every native movement.
func (l *Ledger) moveNative(from, to common.Address, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.nativeBalance(from)
	if src.Cmp(value) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), src, value)
	}
	src.Sub(src, value)
	dst := l.nativeBalance(to)
	dst.Add(dst, value)
	return nil
}

// nativeBalance returns the live balance entry. Caller holds l.mu.
func (l *Ledger) nativeBalance(account common.Address) *big.Int {
	b, ok := l.native[account]
	if !ok {
		b = new(big.Int)
		l.native[account] = b
	}
	return b
}

func (l *Ledger) receiveHook(account common.Address) ReceiveHook {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hooks[account]
}

// --- deployment ---

// DeployToken creates a fungible token and returns its address. Addresses
// are derived from the creator and a deployment counter, so a replayed
// devnet produces the same addresses.
func (l *Ledger) DeployToken(creator common.Address, symbol string, decimals uint8) (common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deployToken(creator, symbol, decimals)
}

// DeployWrapped creates the wrapped-native token. A ledger has at most one.
func (l *Ledger) DeployWrapped(creator common.Address, symbol string, decimals uint8) (common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.wrapped != (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: wrapped token at %s", ErrTokenExists, l.wrapped.Hex())
	}
	addr, err := l.deployToken(creator, symbol, decimals)
	if err != nil {
		return common.Address{}, err
	}
	l.wrapped = addr
	return addr, nil
}

// deployToken creates the token entry. Caller holds l.mu.
func (l *Ledger) deployToken(creator common.Address, symbol string, decimals uint8) (common.Address, error) {
	if symbol == "" {
		return common.Address{}, errors.New("token symbol required")
	}
	addr := crypto.CreateAddress(creator, l.deploys)
	if _, exists := l.tokens[addr]; exists {
		return common.Address{}, ErrTokenExists
	}
	l.deploys++
	l.tokens[addr] = newToken(symbol, decimals)
	return addr, nil
}

// MintToken credits freshly issued token units to an account.
func (l *Ledger) MintToken(asset, account common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	tok, ok := l.tokens[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, asset.Hex())
	}
	bal := tok.balance(account)
	bal.Add(bal, amount)
	return nil
}

// Wrapped returns the wrapped-native token address, or the zero address if
// none is deployed.
func (l *Ledger) Wrapped() common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrapped
}

// HasToken reports whether an asset address is a deployed token.
func (l *Ledger) HasToken(asset common.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.tokens[asset]
	return ok
}

// TokenInfo describes a deployed token.
type TokenInfo struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// ListTokens returns all deployed tokens sorted by address.
func (l *Ledger) ListTokens() []TokenInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TokenInfo, 0, len(l.tokens))
	for addr, tok := range l.tokens {
		out = append(out, TokenInfo{Address: addr, Symbol: tok.symbol, Decimals: tok.decimals})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Hex() < out[j].Address.Hex()
	})
	return out
}
