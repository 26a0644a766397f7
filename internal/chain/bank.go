package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

// Bank moves native currency with plain value transfers. A chain cannot
// debit arbitrary accounts, so Pull only accepts the signing wallet as the
// source. Send estimates gas instead of assuming a bare transfer, because a
// contract recipient runs its receive code on the way in.
type Bank struct {
	client *Client
	sender *Sender
	pool   common.Address
}

var _ pool.Bank = (*Bank)(nil)

// NewBank wires native transfers for the pool account at poolAddr.
func NewBank(client *Client, sender *Sender, poolAddr common.Address) *Bank {
	return &Bank{client: client, sender: sender, pool: poolAddr}
}

// Pull moves value of native currency from the signing wallet into the pool
// account.
func (b *Bank) Pull(ctx context.Context, from common.Address, value *big.Int) error {
	if b.sender == nil {
		return ErrReadOnly
	}
	if from != b.sender.From() {
		return fmt.Errorf("cannot pull native funds from %s: not the signing wallet", from.Hex())
	}
	_, err := b.sender.SendAndWait(ctx, b.pool, value, "", config.GasLimitNativeTransfer)
	return err
}

// Send pays value of native currency out of the signing wallet to the
// recipient.
func (b *Bank) Send(ctx context.Context, to common.Address, value *big.Int) error {
	if b.sender == nil {
		return ErrReadOnly
	}
	_, err := b.sender.SendAndWait(ctx, to, value, "", 0)
	return err
}
