package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Selectors for the ERC-20 and wrapped-native surfaces the pool touches,
// computed once from the canonical signatures.
var (
	selBalanceOf    = methodID("balanceOf(address)")                    // 0x70a08231
	selTransfer     = methodID("transfer(address,uint256)")             // 0xa9059cbb
	selTransferFrom = methodID("transferFrom(address,address,uint256)") // 0x23b872dd
	selApprove      = methodID("approve(address,uint256)")              // 0x095ea7b3
	selAllowance    = methodID("allowance(address,address)")            // 0xdd62ed3e
	selDecimals     = methodID("decimals()")                            // 0x313ce567
	selSymbol       = methodID("symbol()")                              // 0x95d89b41
	selDeposit      = methodID("deposit()")                             // 0xd0e30db0
	selWithdraw     = methodID("withdraw(uint256)")                     // 0x2e1a7d4d
)

// methodID returns the 4-byte function selector for a canonical signature,
// 0x-prefixed.
func methodID(signature string) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return "0x" + hex.EncodeToString(hash.Sum(nil)[:4])
}

// EventTopic returns the full 32-byte topic hash for a canonical event
// signature, 0x-prefixed. Used to filter eth_getLogs queries.
func EventTopic(signature string) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return "0x" + hex.EncodeToString(hash.Sum(nil))
}

// encodeAddress pads an address into one 32-byte calldata word.
func encodeAddress(a common.Address) string {
	return fmt.Sprintf("%064s", strings.TrimPrefix(strings.ToLower(a.Hex()), "0x"))
}

// encodeUint pads a non-negative integer into one 32-byte calldata word.
func encodeUint(n *big.Int) string {
	return fmt.Sprintf("%064x", n)
}

// TopicAddress pads an address into a 32-byte log topic for eth_getLogs
// filters.
func TopicAddress(a common.Address) string {
	return "0x" + encodeAddress(a)
}

// topicToAddress recovers an address from an indexed 32-byte log topic.
func topicToAddress(topic string) common.Address {
	s := strings.TrimPrefix(topic, "0x")
	if len(s) >= 40 {
		s = s[len(s)-40:]
	}
	return common.HexToAddress(s)
}

// decodeUint parses a single-word eth_call result into a big.Int.
func decodeUint(result string) (*big.Int, error) {
	s := strings.TrimPrefix(result, "0x")
	if s == "" {
		return nil, fmt.Errorf("empty call result")
	}
	if len(s) > 64 {
		s = s[:64]
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("could not parse uint result: %s", result)
	}
	return n, nil
}

// decodeBool parses a single-word eth_call result into a bool.
func decodeBool(result string) (bool, error) {
	n, err := decodeUint(result)
	if err != nil {
		return false, err
	}
	return n.Sign() != 0, nil
}

// decodeString parses an ABI-encoded string return value. The standard
// layout is offset word, length word, then the bytes; some old tokens return
// a bytes32 symbol instead, which is handled as a fallback.
func decodeString(result string) (string, error) {
	s := strings.TrimPrefix(result, "0x")
	if s == "" {
		return "", fmt.Errorf("empty call result")
	}

	if len(s) < 128 {
		// bytes32-style value: raw bytes, zero padded.
		b, err := hex.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("could not decode string result: %s", result)
		}
		return strings.TrimRight(string(b), "\x00"), nil
	}

	offset, ok := new(big.Int).SetString(s[:64], 16)
	if !ok {
		return "", fmt.Errorf("could not parse string offset: %s", result)
	}
	pos := int(offset.Int64()) * 2
	if pos+64 > len(s) {
		return "", fmt.Errorf("string offset out of range: %s", result)
	}

	length, ok := new(big.Int).SetString(s[pos:pos+64], 16)
	if !ok {
		return "", fmt.Errorf("could not parse string length: %s", result)
	}
	start := pos + 64
	end := start + int(length.Int64())*2
	if end > len(s) {
		return "", fmt.Errorf("string length out of range: %s", result)
	}

	b, err := hex.DecodeString(s[start:end])
	if err != nil {
		return "", fmt.Errorf("could not decode string bytes: %s", result)
	}
	return string(b), nil
}
