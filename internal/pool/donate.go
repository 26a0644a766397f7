package pool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReceiveNative handles native currency arriving at the pool account outside
// a donate call. The bank credits the pool before invoking this hook;
// returning an error tells the bank to roll the transfer back.
//
// The wrapped-native contract pays the pool during an unwrap already in
// progress, so value from it is absorbed with no event and no re-wrap.
func (p *Pool) ReceiveNative(ctx context.Context, from common.Address, value *big.Int) (Event, error) {
	if from == p.wrappedID {
		return Event{}, nil
	}
	value = orZero(value)
	if value.Sign() <= 0 {
		return Event{}, ErrZeroAmount
	}
	if err := p.wrapped.Deposit(ctx, value); err != nil {
		return Event{}, err
	}
	return p.record(Event{
		Type:   EventDonationReceived,
		Asset:  p.wrappedID,
		Donor:  from,
		Amount: new(big.Int).Set(value),
	}), nil
}

// DonateNative accepts a combined donation: wrappedAmount is pulled from the
// donor's wrapped balance (needs a prior allowance) and value is drawn from
// the donor's native balance and wrapped. Either leg may be zero, but not
// both. Emits one DonationReceived for the combined total.
func (p *Pool) DonateNative(ctx context.Context, donor common.Address, wrappedAmount, value *big.Int) (Event, error) {
	wrappedAmount = orZero(wrappedAmount)
	value = orZero(value)
	if wrappedAmount.Sign() < 0 || value.Sign() < 0 {
		return Event{}, ErrZeroAmount
	}
	total := new(big.Int).Add(wrappedAmount, value)
	if total.Sign() == 0 {
		return Event{}, ErrZeroAmount
	}

	if value.Sign() > 0 {
		if err := p.bank.Pull(ctx, donor, value); err != nil {
			return Event{}, err
		}
	}
	if wrappedAmount.Sign() > 0 {
		// The wrapped contract's own balance and allowance errors surface
		// unchanged here; only a bare false return is folded into the
		// transfer-failure kind.
		ok, err := p.wrapped.TransferFrom(ctx, donor, p.account, wrappedAmount)
		if err == nil && !ok {
			err = &TokenTransferError{Asset: p.wrappedID}
		}
		if err != nil {
			p.refundNative(ctx, donor, value)
			return Event{}, err
		}
	}
	if value.Sign() > 0 {
		if err := p.wrapped.Deposit(ctx, value); err != nil {
			// Put both legs back so the failed donate leaves balances
			// untouched.
			p.refundWrapped(ctx, donor, wrappedAmount)
			p.refundNative(ctx, donor, value)
			return Event{}, err
		}
	}

	return p.record(Event{
		Type:   EventDonationReceived,
		Asset:  p.wrappedID,
		Donor:  donor,
		Amount: total,
	}), nil
}

// DonateToken pulls amount of an approved asset from the donor. The donor
// must have granted the pool a sufficient allowance beforehand.
func (p *Pool) DonateToken(ctx context.Context, donor, asset common.Address, amount *big.Int) (Event, error) {
	if !p.IsApproved(asset) {
		return Event{}, &NotApprovedError{Asset: asset}
	}
	amount = orZero(amount)
	if amount.Sign() <= 0 {
		return Event{}, ErrZeroAmount
	}
	tok, err := p.tokens.Token(asset)
	if err != nil {
		return Event{}, err
	}
	if err := p.safePull(ctx, asset, tok, donor, amount); err != nil {
		return Event{}, err
	}
	return p.record(Event{
		Type:   EventDonationReceived,
		Asset:  asset,
		Donor:  donor,
		Amount: new(big.Int).Set(amount),
	}), nil
}

// refundNative returns a pulled native leg to the donor. The pool still
// holds the value, so a failure here is an infrastructure fault, not a
// balance fault.
func (p *Pool) refundNative(ctx context.Context, donor common.Address, value *big.Int) {
	if value.Sign() > 0 {
		p.bank.Send(ctx, donor, value) //nolint:errcheck
	}
}

// refundWrapped returns a pulled wrapped leg to the donor.
func (p *Pool) refundWrapped(ctx context.Context, donor common.Address, amount *big.Int) {
	if amount.Sign() > 0 {
		p.wrapped.Transfer(ctx, donor, amount) //nolint:errcheck
	}
}
