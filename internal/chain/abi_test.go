package chain

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// methodID — selectors must match the canonical ERC-20 / WETH values
// ---------------------------------------------------------------------------

func TestMethodIDKnownSelectors(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"balanceOf(address)", "0x70a08231"},
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"transferFrom(address,address,uint256)", "0x23b872dd"},
		{"approve(address,uint256)", "0x095ea7b3"},
		{"allowance(address,address)", "0xdd62ed3e"},
		{"decimals()", "0x313ce567"},
		{"symbol()", "0x95d89b41"},
		{"deposit()", "0xd0e30db0"},
		{"withdraw(uint256)", "0x2e1a7d4d"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			assert.Equal(t, tt.want, methodID(tt.sig))
		})
	}
}

func TestPrecomputedSelectors(t *testing.T) {
	assert.Equal(t, "0x70a08231", selBalanceOf)
	assert.Equal(t, "0xa9059cbb", selTransfer)
	assert.Equal(t, "0x23b872dd", selTransferFrom)
	assert.Equal(t, "0xd0e30db0", selDeposit)
	assert.Equal(t, "0x2e1a7d4d", selWithdraw)
}

func TestEventTopicTransfer(t *testing.T) {
	// The canonical ERC-20 Transfer topic.
	want := "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	assert.Equal(t, want, EventTopic("Transfer(address,address,uint256)"))
}

func TestEventTopicWETHDeposit(t *testing.T) {
	want := "0xe1fffcc4923d04b559f4d29a8bfc6cda04eb5b0d3c460751c2402c5c5cc9109c"
	assert.Equal(t, want, EventTopic("Deposit(address,uint256)"))
}

// ---------------------------------------------------------------------------
// Word encoding
// ---------------------------------------------------------------------------

func TestEncodeAddress(t *testing.T) {
	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	got := encodeAddress(addr)
	assert.Len(t, got, 64)
	assert.Equal(t, "000000000000000000000000f39fd6e51aad88f6f4ce6ab8827279cfffb92266", got)
}

func TestEncodeAddressZero(t *testing.T) {
	got := encodeAddress(common.Address{})
	assert.Equal(t, strings.Repeat("0", 64), got)
}

func TestEncodeUint(t *testing.T) {
	tests := []struct {
		name string
		n    *big.Int
		want string
	}{
		{"zero", big.NewInt(0), strings.Repeat("0", 64)},
		{"small", big.NewInt(255), strings.Repeat("0", 62) + "ff"},
		{"one ether", new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), strings.Repeat("0", 49) + "de0b6b3a7640000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeUint(tt.n)
			assert.Len(t, got, 64)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBalanceOfCalldataShape(t *testing.T) {
	holder := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	calldata := selBalanceOf + encodeAddress(holder)
	// 2 ("0x") + 8 (selector) + 64 (word) characters.
	assert.Len(t, calldata, 74)
	assert.True(t, strings.HasPrefix(calldata, "0x70a08231"))
	assert.True(t, strings.HasSuffix(calldata, "d8da6bf26964af9d7eed9e03e53415d37aa96045"))
}

func TestTopicAddressRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	topic := TopicAddress(addr)
	assert.Len(t, topic, 66)
	assert.Equal(t, addr, topicToAddress(topic))
}

// ---------------------------------------------------------------------------
// Word decoding
// ---------------------------------------------------------------------------

func TestDecodeUint(t *testing.T) {
	n, err := decodeUint("0x0000000000000000000000000000000000000000000000000000000000001388")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), n.Int64())
}

func TestDecodeUintMaxUint256(t *testing.T) {
	n, err := decodeUint("0x" + strings.Repeat("f", 64))
	require.NoError(t, err)
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	assert.Equal(t, max, n)
}

func TestDecodeUintTakesFirstWord(t *testing.T) {
	// Two words back to back; only the first counts.
	result := "0x" + encodeUint(big.NewInt(7)) + encodeUint(big.NewInt(99))
	n, err := decodeUint(result)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.Int64())
}

func TestDecodeUintEmpty(t *testing.T) {
	_, err := decodeUint("0x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDecodeUintGarbage(t *testing.T) {
	_, err := decodeUint("0xzzzz")
	require.Error(t, err)
}

func TestDecodeBool(t *testing.T) {
	yes, err := decodeBool("0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := decodeBool("0x0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.False(t, no)
}

func TestDecodeStringStandard(t *testing.T) {
	// ABI encoding of "WETH": offset word, length word, padded data.
	payload := "0x" +
		encodeUint(big.NewInt(32)) +
		encodeUint(big.NewInt(4)) +
		hex.EncodeToString([]byte("WETH")) + strings.Repeat("0", 56)

	s, err := decodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, "WETH", s)
}

func TestDecodeStringBytes32Fallback(t *testing.T) {
	// MKR-style tokens return a right-padded bytes32 instead of a string.
	payload := "0x" + hex.EncodeToString([]byte("MKR")) + strings.Repeat("0", 58)
	s, err := decodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, "MKR", s)
}

func TestDecodeStringEmpty(t *testing.T) {
	_, err := decodeString("0x")
	require.Error(t, err)
}

func TestDecodeStringBadOffset(t *testing.T) {
	payload := "0x" + encodeUint(big.NewInt(9999)) + encodeUint(big.NewInt(4))
	_, err := decodeString(payload)
	require.Error(t, err)
}
