package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/w3pool/internal/wallet"
)

// Sender builds, signs and broadcasts EIP-1559 transactions for one signing
// wallet. All pool writes on the chain backend go through here.
type Sender struct {
	client  *Client
	signer  *wallet.Signer
	from    common.Address
	chainID *big.Int
	confirm time.Duration
}

// NewSender wires a signer to a client. confirm bounds how long SendAndWait
// polls for a receipt.
func NewSender(client *Client, signer *wallet.Signer, chainID *big.Int, confirm time.Duration) *Sender {
	return &Sender{
		client:  client,
		signer:  signer,
		from:    common.HexToAddress(signer.Address()),
		chainID: chainID,
		confirm: confirm,
	}
}

// From returns the signing wallet's address.
func (s *Sender) From() common.Address { return s.from }

// Send signs and broadcasts a transaction, returning its hash. A zero
// gasLimit asks the node for an estimate first; when estimation fails the
// call is simulated to surface the revert reason instead of broadcasting a
// doomed transaction.
func (s *Sender) Send(ctx context.Context, to common.Address, value *big.Int, calldata string, gasLimit uint64) (string, error) {
	if value == nil {
		value = new(big.Int)
	}

	if gasLimit == 0 {
		est, err := s.client.EstimateGas(ctx, s.from.Hex(), to.Hex(), value, calldata)
		if err != nil {
			ok, reason, simErr := s.client.SimulateCall(ctx, s.from.Hex(), to.Hex(), calldata, value)
			if simErr == nil && !ok {
				return "", fmt.Errorf("call would revert: %s", reason)
			}
			return "", fmt.Errorf("estimating gas: %w", err)
		}
		gasLimit = est
	}

	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching gas price: %w", err)
	}

	nonce, err := s.client.GetPendingNonce(ctx, s.from.Hex())
	if err != nil {
		return "", fmt.Errorf("fetching nonce: %w", err)
	}

	toAddr := to
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gasLimit,
		To:        &toAddr,
		Value:     value,
		Data:      hexToBytes(calldata),
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.client.SendRawTransaction(ctx, "0x"+bytesToHex(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// SendAndWait broadcasts like Send and then blocks until the transaction is
// mined. A reverted transaction returns its receipt alongside the error so
// callers can tell a revert from a transport failure.
func (s *Sender) SendAndWait(ctx context.Context, to common.Address, value *big.Int, calldata string, gasLimit uint64) (*TxReceipt, error) {
	hash, err := s.Send(ctx, to, value, calldata, gasLimit)
	if err != nil {
		return nil, err
	}
	return s.client.WaitForReceipt(ctx, hash, s.confirm)
}

// --- hex plumbing ---

func hexToBytes(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b := make([]byte, len(s)/2)
	for i := 0; i < len(b); i++ {
		fmt.Sscanf(s[2*i:2*i+2], "%02x", &b[i]) //nolint:errcheck
	}
	return b
}

func bytesToHex(b []byte) string {
	return fmt.Sprintf("%x", b)
}
