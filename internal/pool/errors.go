package pool

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrZeroAmount     = errors.New("amount must be positive")
	ErrTransferFailed = errors.New("native transfer failed")
)

// NotApprovedError reports an operation on an asset that is not in the
// approval registry.
type NotApprovedError struct {
	Asset common.Address
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("asset not approved: %s", e.Asset.Hex())
}

// UnauthorizedError reports an owner-only operation attempted by another
// caller.
type UnauthorizedError struct {
	Caller common.Address
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized caller: %s", e.Caller.Hex())
}

// TokenTransferError reports a token push or pull that did not complete,
// whether the token returned a false success flag or raised its own error.
// The raised error, if any, is kept as the cause.
type TokenTransferError struct {
	Asset common.Address
	Cause error
}

func (e *TokenTransferError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("token transfer failed: %s: %v", e.Asset.Hex(), e.Cause)
	}
	return fmt.Sprintf("token transfer failed: %s (transfer returned false)", e.Asset.Hex())
}

func (e *TokenTransferError) Unwrap() error { return e.Cause }
