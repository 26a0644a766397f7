package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

// WETH binds the canonical wrapped-native contract. Deposit wraps native
// currency held by the signing wallet 1:1 into token balance; Withdraw
// unwraps back. The transfer surface is the embedded ERC20 binding.
type WETH struct {
	ERC20
}

var _ pool.Wrapped = (*WETH)(nil)

// NewWETH binds the wrapped-native contract at addr.
func NewWETH(client *Client, sender *Sender, addr common.Address) *WETH {
	return &WETH{ERC20{client: client, sender: sender, addr: addr}}
}

// Deposit wraps value of the signing wallet's native currency.
func (w *WETH) Deposit(ctx context.Context, value *big.Int) error {
	if w.sender == nil {
		return ErrReadOnly
	}
	_, err := w.sender.SendAndWait(ctx, w.addr, value, selDeposit, config.GasLimitWrappedDeposit)
	return err
}

// Withdraw unwraps amount back into the signing wallet's native balance.
func (w *WETH) Withdraw(ctx context.Context, amount *big.Int) error {
	if w.sender == nil {
		return ErrReadOnly
	}
	calldata := selWithdraw + encodeUint(amount)
	_, err := w.sender.SendAndWait(ctx, w.addr, nil, calldata, config.GasLimitWrappedWithdraw)
	return err
}
