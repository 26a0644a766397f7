package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3pool/internal/config"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

// ErrReadOnly is returned when a write is attempted on a binding that was
// built without a signing wallet.
var ErrReadOnly = errors.New("binding is read-only: no signing wallet attached")

// ERC20 binds a token contract over JSON-RPC. Reads go through eth_call;
// writes are signed by the sender wallet and block until mined, with a
// reverted transaction folded into a false success flag the way an on-chain
// caller would see a returned false.
type ERC20 struct {
	client *Client
	sender *Sender
	addr   common.Address
}

var _ pool.Token = (*ERC20)(nil)

// NewERC20 binds the token contract at addr. sender may be nil for a
// read-only binding.
func NewERC20(client *Client, sender *Sender, addr common.Address) *ERC20 {
	return &ERC20{client: client, sender: sender, addr: addr}
}

// Address returns the bound contract address.
func (t *ERC20) Address() common.Address { return t.addr }

// BalanceOf returns the token balance of an account.
func (t *ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.client.CallContract(ctx, t.addr.Hex(), selBalanceOf+encodeAddress(account))
	if err != nil {
		return nil, err
	}
	return decodeUint(out)
}

// Allowance returns how much spender may draw from owner.
func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	calldata := selAllowance + encodeAddress(owner) + encodeAddress(spender)
	out, err := t.client.CallContract(ctx, t.addr.Hex(), calldata)
	if err != nil {
		return nil, err
	}
	return decodeUint(out)
}

// Decimals returns the token's decimal places.
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.client.CallContract(ctx, t.addr.Hex(), selDecimals)
	if err != nil {
		return 0, err
	}
	n, err := decodeUint(out)
	if err != nil {
		return 0, err
	}
	return uint8(n.Uint64()), nil
}

// Symbol returns the token's ticker symbol.
func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	out, err := t.client.CallContract(ctx, t.addr.Hex(), selSymbol)
	if err != nil {
		return "", err
	}
	return decodeString(out)
}

// Transfer moves amount from the signing wallet to the recipient.
func (t *ERC20) Transfer(ctx context.Context, to common.Address, amount *big.Int) (bool, error) {
	calldata := selTransfer + encodeAddress(to) + encodeUint(amount)
	return t.write(ctx, calldata, config.GasLimitTokenTransfer)
}

// TransferFrom moves amount between two holders. When from is the signing
// wallet itself this is a direct transfer; moving a third party's funds is a
// real transferFrom and needs an allowance granted to the signer.
func (t *ERC20) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (bool, error) {
	if t.sender != nil && from == t.sender.From() {
		return t.Transfer(ctx, to, amount)
	}
	calldata := selTransferFrom + encodeAddress(from) + encodeAddress(to) + encodeUint(amount)
	return t.write(ctx, calldata, config.GasLimitContractCall)
}

// Approve grants spender an allowance from the signing wallet.
func (t *ERC20) Approve(ctx context.Context, spender common.Address, amount *big.Int) (bool, error) {
	calldata := selApprove + encodeAddress(spender) + encodeUint(amount)
	return t.write(ctx, calldata, config.GasLimitTokenApprove)
}

func (t *ERC20) write(ctx context.Context, calldata string, gasLimit uint64) (bool, error) {
	if t.sender == nil {
		return false, ErrReadOnly
	}
	receipt, err := t.sender.SendAndWait(ctx, t.addr, nil, calldata, gasLimit)
	if err != nil {
		if receipt != nil && receipt.Status == 0 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Resolver hands out ERC20 bindings, verifying once per address that a
// contract actually lives there.
type Resolver struct {
	client *Client
	sender *Sender

	mu    sync.Mutex
	cache map[common.Address]*ERC20
}

var _ pool.Resolver = (*Resolver)(nil)

// NewResolver creates a resolver binding tokens to the given client and
// signing wallet. sender may be nil for a read-only resolver.
func NewResolver(client *Client, sender *Sender) *Resolver {
	return &Resolver{
		client: client,
		sender: sender,
		cache:  make(map[common.Address]*ERC20),
	}
}

// Token returns an ERC20 binding for asset, rejecting addresses with no
// contract code. The code check runs once per address and is bounded by the
// client's request timeout.
func (r *Resolver) Token(asset common.Address) (pool.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.cache[asset]; ok {
		return t, nil
	}

	code, err := r.client.GetCode(context.Background(), asset.Hex())
	if err != nil {
		return nil, fmt.Errorf("checking token contract: %w", err)
	}
	if code == "" || code == "0x" {
		return nil, fmt.Errorf("no token contract at %s", asset.Hex())
	}

	t := NewERC20(r.client, r.sender, asset)
	r.cache[asset] = t
	return t, nil
}
