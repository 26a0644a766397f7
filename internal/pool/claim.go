package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ClaimFull releases the pool's entire balance of an asset to recipient.
// Owner only.
func (p *Pool) ClaimFull(ctx context.Context, caller, asset, recipient common.Address) (Event, error) {
	if caller != p.owner {
		return Event{}, &UnauthorizedError{Caller: caller}
	}
	p.claimMu.Lock()
	defer p.claimMu.Unlock()

	balance, err := p.Balance(ctx, asset)
	if err != nil {
		return Event{}, err
	}
	return p.claim(ctx, asset, recipient, balance)
}

// ClaimPartial releases a chosen amount of an asset to recipient. Owner
// only. Sufficiency is the ledger's check: claiming more than held fails
// inside the unwrap or the token transfer, not here.
func (p *Pool) ClaimPartial(ctx context.Context, caller, asset, recipient common.Address, amount *big.Int) (Event, error) {
	if caller != p.owner {
		return Event{}, &UnauthorizedError{Caller: caller}
	}
	p.claimMu.Lock()
	defer p.claimMu.Unlock()

	return p.claim(ctx, asset, recipient, orZero(amount))
}

// claim is the shared withdrawal path. Wrapped-native claims unwrap first
// and forward second, strictly in that order; a failed forward re-wraps the
// freed native so balances read as before the call.
func (p *Pool) claim(ctx context.Context, asset, recipient common.Address, amount *big.Int) (Event, error) {
	if amount.Sign() <= 0 {
		return Event{}, ErrZeroAmount
	}

	if asset == p.wrappedID {
		if err := p.wrapped.Withdraw(ctx, amount); err != nil {
			return Event{}, err
		}
		if err := p.bank.Send(ctx, recipient, amount); err != nil {
			if werr := p.wrapped.Deposit(ctx, amount); werr != nil {
				return Event{}, fmt.Errorf("%w: %v (re-wrap also failed: %v)", ErrTransferFailed, err, werr)
			}
			return Event{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	} else {
		if !p.IsApproved(asset) {
			return Event{}, &NotApprovedError{Asset: asset}
		}
		tok, err := p.tokens.Token(asset)
		if err != nil {
			return Event{}, err
		}
		if err := p.safePush(ctx, asset, tok, recipient, amount); err != nil {
			return Event{}, err
		}
	}

	return p.record(Event{
		Type:      EventDonationClaimed,
		Asset:     asset,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	}), nil
}
