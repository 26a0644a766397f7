package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// token is the in-ledger state of one fungible token.
type token struct {
	symbol     string
	decimals   uint8
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

func newToken(symbol string, decimals uint8) *token {
	return &token{
		symbol:     symbol,
		decimals:   decimals,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// balance returns the live balance entry for an account.
func (t *token) balance(account common.Address) *big.Int {
	b, ok := t.balances[account]
	if !ok {
		b = new(big.Int)
		t.balances[account] = b
	}
	return b
}

// allowance returns the live allowance entry owner has granted spender.
func (t *token) allowance(owner, spender common.Address) *big.Int {
	grants, ok := t.allowances[owner]
	if !ok {
		grants = make(map[common.Address]*big.Int)
		t.allowances[owner] = grants
	}
	a, ok := grants[spender]
	if !ok {
		a = new(big.Int)
		grants[spender] = a
	}
	return a
}

// --- ledger-level token operations, all called with l.mu held ---

func (l *Ledger) tokenState(asset common.Address) (*token, error) {
	tok, ok := l.tokens[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, asset.Hex())
	}
	return tok, nil
}

// tokenTransfer moves amount between holders. Balance check first, like the
// reference wrapped-native contract.
func (l *Ledger) tokenTransfer(asset, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	tok, err := l.tokenState(asset)
	if err != nil {
		return err
	}
	src := tok.balance(from)
	if src.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from.Hex(), src, tok.symbol, amount)
	}
	src.Sub(src, amount)
	dst := tok.balance(to)
	dst.Add(dst, amount)
	return nil
}

// tokenTransferFrom spends spender's allowance from the holder, then moves
// the amount.
func (l *Ledger) tokenTransferFrom(asset, spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	tok, err := l.tokenState(asset)
	if err != nil {
		return err
	}
	src := tok.balance(from)
	if src.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from.Hex(), src, tok.symbol, amount)
	}
	if from != spender {
		granted := tok.allowance(from, spender)
		if granted.Cmp(amount) < 0 {
			return fmt.Errorf("%w: %s granted %s %s, needs %s", ErrInsufficientAllowance, from.Hex(), granted, tok.symbol, amount)
		}
		granted.Sub(granted, amount)
	}
	src.Sub(src, amount)
	dst := tok.balance(to)
	dst.Add(dst, amount)
	return nil
}

// tokenApprove sets (not adds to) the allowance owner grants spender.
func (l *Ledger) tokenApprove(asset, owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	tok, err := l.tokenState(asset)
	if err != nil {
		return err
	}
	tok.allowance(owner, spender).Set(amount)
	return nil
}
