package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer turns a signing wallet into raw transaction bytes. Every pool
// mutation on the chain backend funnels through one of these. The private
// key is fetched from the keystore per signature, never held on the struct.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner binds a wallet to a keystore backend.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Address returns the wallet's hex address.
func (s *Signer) Address() string { return s.wallet.Address }

// SignTx signs tx for chainID and returns the RLP encoding ready for
// eth_sendRawTransaction.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	if s.wallet.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", s.wallet.Name)
	}

	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed.MarshalBinary()
}
