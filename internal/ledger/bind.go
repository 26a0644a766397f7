package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

// BoundToken is a token view acting as one account. Transfer spends the
// actor's balance, TransferFrom spends an allowance granted to the actor,
// Approve grants allowances on the actor's behalf.
type BoundToken struct {
	l     *Ledger
	token common.Address
	actor common.Address
}

// Token binds a deployed token for an acting account.
func (l *Ledger) Token(asset, actor common.Address) (*BoundToken, error) {
	l.mu.Lock()
	_, err := l.tokenState(asset)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &BoundToken{l: l, token: asset, actor: actor}, nil
}

// Address returns the token's asset address.
func (t *BoundToken) Address() common.Address { return t.token }

func (t *BoundToken) Symbol(ctx context.Context) (string, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	tok, err := t.l.tokenState(t.token)
	if err != nil {
		return "", err
	}
	return tok.symbol, nil
}

func (t *BoundToken) Decimals(ctx context.Context) (uint8, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	tok, err := t.l.tokenState(t.token)
	if err != nil {
		return 0, err
	}
	return tok.decimals, nil
}

func (t *BoundToken) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	tok, err := t.l.tokenState(t.token)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(tok.balance(account)), nil
}

func (t *BoundToken) Transfer(ctx context.Context, to common.Address, amount *big.Int) (bool, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if err := t.l.tokenTransfer(t.token, t.actor, to, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (t *BoundToken) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (bool, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if err := t.l.tokenTransferFrom(t.token, t.actor, from, to, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (t *BoundToken) Approve(ctx context.Context, spender common.Address, amount *big.Int) (bool, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if err := t.l.tokenApprove(t.token, t.actor, spender, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (t *BoundToken) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	tok, err := t.l.tokenState(t.token)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(tok.allowance(owner, spender)), nil
}

// BoundWrapped is the wrapped-native token view: a token plus the 1:1
// native conversions. Conversions are unit-for-unit; decimals only affect
// display.
type BoundWrapped struct {
	BoundToken
}

// WrappedToken binds the wrapped-native token for an acting account.
func (l *Ledger) WrappedToken(actor common.Address) (*BoundWrapped, error) {
	wrapped := l.Wrapped()
	if wrapped == (common.Address{}) {
		return nil, ErrNoWrapped
	}
	tok, err := l.Token(wrapped, actor)
	if err != nil {
		return nil, err
	}
	return &BoundWrapped{BoundToken: *tok}, nil
}

// Deposit converts value of the actor's native balance into wrapped
// balance. Depositing zero changes nothing and is not an error.
func (w *BoundWrapped) Deposit(ctx context.Context, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	if value.Sign() == 0 {
		return nil
	}
	if err := w.l.moveNative(w.actor, w.token, value); err != nil {
		return err
	}
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	tok, err := w.l.tokenState(w.token)
	if err != nil {
		return err
	}
	bal := tok.balance(w.actor)
	bal.Add(bal, value)
	return nil
}

// Withdraw burns wrapped balance and pays the actor native currency. The
// payout is a plain send, so the actor's receive hook runs with the wrapped
// token as the source.
func (w *BoundWrapped) Withdraw(ctx context.Context, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := w.burn(amount); err != nil {
		return err
	}
	if err := w.l.TransferNative(ctx, w.token, w.actor, amount); err != nil {
		w.unburn(amount)
		return err
	}
	return nil
}

func (w *BoundWrapped) burn(amount *big.Int) error {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	tok, err := w.l.tokenState(w.token)
	if err != nil {
		return err
	}
	bal := tok.balance(w.actor)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}

func (w *BoundWrapped) unburn(amount *big.Int) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	tok, err := w.l.tokenState(w.token)
	if err != nil {
		return
	}
	bal := tok.balance(w.actor)
	bal.Add(bal, amount)
}

// BoundBank is the native-currency view for one acting account.
type BoundBank struct {
	l     *Ledger
	actor common.Address
}

// Bank binds the native ledger for an acting account.
func (l *Ledger) Bank(actor common.Address) *BoundBank {
	return &BoundBank{l: l, actor: actor}
}

func (b *BoundBank) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return b.l.NativeBalanceOf(account), nil
}

// Pull draws value from a donor into the actor's account. It models value
// attached to a call, so no receive hook runs; the devnet trusts the caller
// to act for the donor.
func (b *BoundBank) Pull(ctx context.Context, from common.Address, value *big.Int) error {
	return b.l.moveNative(from, b.actor, value)
}

// Send pays value out of the actor's account as a plain send. The
// recipient's receive hook runs and can reject the payment.
func (b *BoundBank) Send(ctx context.Context, to common.Address, value *big.Int) error {
	return b.l.TransferNative(ctx, b.actor, to, value)
}

// Resolver binds asset identifiers to token views for one acting account.
type Resolver struct {
	l     *Ledger
	actor common.Address
}

// Resolver returns the token resolver for an acting account.
func (l *Ledger) Resolver(actor common.Address) *Resolver {
	return &Resolver{l: l, actor: actor}
}

// Token resolves a deployed token. Unknown assets are an error; the devnet
// has no way to bind a token that was never deployed.
func (r *Resolver) Token(asset common.Address) (pool.Token, error) {
	return r.l.Token(asset, r.actor)
}
