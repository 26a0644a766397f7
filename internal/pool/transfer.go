package pool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the fungible-asset surface the pool works against.
// Implementations are bound to the pool as the acting account: Transfer
// spends the pool's own balance and TransferFrom draws on an allowance
// granted to the pool.
type Token interface {
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) (bool, error)
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (bool, error)
}

// Wrapped is the wrapped-native token. Deposit converts native currency
// held by the pool into wrapped balance; Withdraw converts wrapped balance
// back, crediting the pool's native account.
type Wrapped interface {
	Token
	Deposit(ctx context.Context, value *big.Int) error
	Withdraw(ctx context.Context, amount *big.Int) error
}

// Bank moves native currency. Pull draws value from a donor into the pool
// account. Send pays value out of the pool account and runs whatever
// receive logic the destination has, so it can fail on the recipient's
// side.
type Bank interface {
	Pull(ctx context.Context, from common.Address, value *big.Int) error
	Send(ctx context.Context, to common.Address, value *big.Int) error
}

// Resolver binds an asset identifier to its token ledger.
type Resolver interface {
	Token(asset common.Address) (Token, error)
}

// safePull draws amount from the donor into the pool account, folding a
// false success flag and a raised error into one failure kind. Generic
// token pulls go through here; the wrapped pull in DonateNative surfaces
// its collaborator errors unchanged.
func (p *Pool) safePull(ctx context.Context, asset common.Address, tok Token, from common.Address, amount *big.Int) error {
	ok, err := tok.TransferFrom(ctx, from, p.account, amount)
	if err != nil {
		return &TokenTransferError{Asset: asset, Cause: err}
	}
	if !ok {
		return &TokenTransferError{Asset: asset}
	}
	return nil
}

// safePush sends amount out of the pool's balance, with the same failure
// folding as safePull. Every token push in the pool goes through here.
func (p *Pool) safePush(ctx context.Context, asset common.Address, tok Token, to common.Address, amount *big.Int) error {
	ok, err := tok.Transfer(ctx, to, amount)
	if err != nil {
		return &TokenTransferError{Asset: asset, Cause: err}
	}
	if !ok {
		return &TokenTransferError{Asset: asset}
	}
	return nil
}
