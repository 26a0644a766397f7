package pool

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config assembles a pool from its collaborators.
type Config struct {
	Owner   common.Address // privileged identity for approvals and claims
	Account common.Address // the pool's own address on the ledgers
	Wrapped common.Address // asset identifier of the wrapped-native token

	WrappedToken Wrapped
	Bank         Bank
	Tokens       Resolver
	Recorder     Recorder

	// Approvals is overlaid on the default registry (wrapped-native
	// approved) when restoring persisted state. A restored registry may
	// have revoked the wrapped-native entry.
	Approvals map[common.Address]bool
}

// Pool is a custodial donation pool. It accepts native currency and approved
// tokens from anyone; native donations are held as wrapped balance so every
// asset is accounted for through the same token primitives. Only the owner
// releases funds.
//
// Balances live in the asset ledgers themselves. The pool keeps no internal
// amount bookkeeping, only the approval registry.
type Pool struct {
	owner     common.Address
	account   common.Address
	wrappedID common.Address

	wrapped Wrapped
	bank    Bank
	tokens  Resolver
	events  Recorder

	mu       sync.RWMutex
	approved map[common.Address]bool

	claimMu sync.Mutex // serializes the withdrawal path
}

// New validates the configuration and builds the pool. The wrapped-native
// asset starts approved.
func New(cfg Config) (*Pool, error) {
	if cfg.Owner == (common.Address{}) {
		return nil, errors.New("pool: owner address required")
	}
	if cfg.Account == (common.Address{}) {
		return nil, errors.New("pool: pool account address required")
	}
	if cfg.Wrapped == (common.Address{}) {
		return nil, errors.New("pool: wrapped asset address required")
	}
	if cfg.WrappedToken == nil {
		return nil, errors.New("pool: wrapped token binding required")
	}
	if cfg.Bank == nil {
		return nil, errors.New("pool: bank binding required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("pool: token resolver required")
	}

	p := &Pool{
		owner:     cfg.Owner,
		account:   cfg.Account,
		wrappedID: cfg.Wrapped,
		wrapped:   cfg.WrappedToken,
		bank:      cfg.Bank,
		tokens:    cfg.Tokens,
		events:    cfg.Recorder,
		approved:  map[common.Address]bool{cfg.Wrapped: true},
	}
	for asset, ok := range cfg.Approvals {
		p.approved[asset] = ok
	}
	if p.events == nil {
		p.events = nopRecorder{}
	}
	return p, nil
}

// Owner returns the privileged identity.
func (p *Pool) Owner() common.Address { return p.owner }

// Account returns the pool's own address on the ledgers.
func (p *Pool) Account() common.Address { return p.account }

// WrappedAsset returns the asset identifier of the wrapped-native token.
func (p *Pool) WrappedAsset() common.Address { return p.wrappedID }

// IsApproved reports whether the asset may be donated. Revoked and
// never-configured assets are indistinguishable: both read false.
func (p *Pool) IsApproved(asset common.Address) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.approved[asset]
}

// Approvals returns a copy of the registry for persistence and display.
// Revoked assets stay in the map with a false value.
func (p *Pool) Approvals() map[common.Address]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[common.Address]bool, len(p.approved))
	for asset, ok := range p.approved {
		out[asset] = ok
	}
	return out
}

// SetApproval adds or removes an asset from the approval registry. Owner
// only. Re-approving or re-revoking is not an error and still emits
// ApprovalChanged.
func (p *Pool) SetApproval(caller, asset common.Address, approved bool) (Event, error) {
	if caller != p.owner {
		return Event{}, &UnauthorizedError{Caller: caller}
	}
	p.mu.Lock()
	p.approved[asset] = approved
	p.mu.Unlock()
	return p.record(Event{
		Type:     EventApprovalChanged,
		Asset:    asset,
		Approved: boolPtr(approved),
	}), nil
}

// Balance returns the pool's holdings of an asset as recorded by the
// asset's own ledger.
func (p *Pool) Balance(ctx context.Context, asset common.Address) (*big.Int, error) {
	tok, err := p.tokens.Token(asset)
	if err != nil {
		return nil, err
	}
	return tok.BalanceOf(ctx, p.account)
}

// record stamps and emits an event after the operation has committed.
func (p *Pool) record(ev Event) Event {
	ev.Time = time.Now().UTC()
	p.events.Record(ev)
	return ev
}

// orZero lets callers pass nil for "no amount".
func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
