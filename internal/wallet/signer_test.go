package wallet

import (
	"math/big"
	"os"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0 — never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory,
// so no OS keychain prompt can fire in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3pool-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

// nullKeystore has ring=nil; Retrieve always fails.
func nullKeystore() *Keystore { return &Keystore{ring: nil} }

// payoutTx builds the kind of transaction the pool broadcasts: a dynamic-fee
// value transfer.
func payoutTx(chainID int64) *types.Transaction {
	to := common.HexToAddress("0xEeeEeEeEEeEeEEEeEeEeeEEeEeeeEeEeEeeEeEe5")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(chainID),
		Nonce:     0,
		GasTipCap: big.NewInt(1_000_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       21_000,
		To:        &to,
		Value:     big.NewInt(1e18),
	})
}

// ---------------------------------------------------------------------------
// Signer
// ---------------------------------------------------------------------------

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "pool-op", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, nullKeystore())
	assert.Equal(t, testSignerAddr, s.Address())
}

func TestSignTxWatchOnlyRefused(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	s := NewSigner(w, nullKeystore())

	_, err := s.SignTx(payoutTx(1), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignTxKeystoreUnavailable(t *testing.T) {
	os.Unsetenv("W3POOL_KEY") //nolint:errcheck
	w := &Wallet{Name: "pool-op", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3pool.pool-op"}
	s := NewSigner(w, nullKeystore())

	_, err := s.SignTx(payoutTx(1), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxKeyMissing(t *testing.T) {
	os.Unsetenv("W3POOL_KEY") //nolint:errcheck
	w := &Wallet{Name: "ghost", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3pool.ghost"}
	s := NewSigner(w, testKeystore(t))

	_, err := s.SignTx(payoutTx(1), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxProducesRawBytes(t *testing.T) {
	os.Unsetenv("W3POOL_KEY") //nolint:errcheck
	ks := testKeystore(t)
	ref, err := ks.Store("pool-op", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "pool-op", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	s := NewSigner(w, ks)

	raw, err := s.SignTx(payoutTx(1), big.NewInt(1))
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Round-trip the raw bytes and recover the sender.
	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(raw))
	from, err := types.Sender(types.NewLondonSigner(big.NewInt(1)), &decoded)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, from.Hex())
}

func TestSignTxChainIDBindsSignature(t *testing.T) {
	os.Unsetenv("W3POOL_KEY") //nolint:errcheck
	ks := testKeystore(t)
	ref, err := ks.Store("pool-op", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "pool-op", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	s := NewSigner(w, ks)

	rawMainnet, err := s.SignTx(payoutTx(1), big.NewInt(1))
	require.NoError(t, err)
	rawBase, err := s.SignTx(payoutTx(8453), big.NewInt(8453))
	require.NoError(t, err)

	assert.NotEqual(t, rawMainnet, rawBase, "same transfer on different chains must sign differently")
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystoreRoundTrip(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("owner", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "w3pool.owner", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", val)
}

func TestInMemoryKeystoreRetrieveMissing(t *testing.T) {
	iks := NewInMemoryKeystore()
	_, err := iks.Retrieve("w3pool.ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInMemoryKeystoreDelete(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("gone", "secret")
	require.NoError(t, err)

	require.NoError(t, iks.Delete(ref))
	_, err = iks.Retrieve(ref)
	assert.Error(t, err)

	// Deleting a missing ref stays silent.
	assert.NoError(t, iks.Delete(ref))
}

func TestInMemoryKeystoreOverwrite(t *testing.T) {
	iks := NewInMemoryKeystore()
	_, err := iks.Store("owner", "first")
	require.NoError(t, err)
	_, err = iks.Store("owner", "second")
	require.NoError(t, err)

	val, err := iks.Retrieve("w3pool.owner")
	require.NoError(t, err)
	assert.Equal(t, "second", val)
}
