// Package ens resolves ENS names so claim recipients can be given as names
// instead of raw addresses.
package ens

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/w3pool/internal/chain"
)

// The ENS registry lives at one well-known address on mainnet and Sepolia.
const registryAddr = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// Selectors for the two-step registry walk.
const (
	selResolver = "0x0178b8bf" // resolver(bytes32)
	selAddr     = "0x3b3b57de" // addr(bytes32)
)

// IsName reports whether s looks like an ENS name rather than a hex address.
func IsName(s string) bool {
	return strings.Contains(s, ".") && !strings.HasPrefix(strings.ToLower(s), "0x")
}

// Resolve turns an ENS name into a checksummed address: ask the registry
// for the name's resolver, then ask that resolver for the address record.
func Resolve(ctx context.Context, client *chain.Client, name string) (string, error) {
	node := Namehash(name)

	resolver, ok, err := addressCall(ctx, client, registryAddr, selResolver, node)
	if err != nil {
		return "", fmt.Errorf("querying ENS registry: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("no resolver set for %q", name)
	}

	resolved, ok, err := addressCall(ctx, client, resolver.Hex(), selAddr, node)
	if err != nil {
		return "", fmt.Errorf("querying ENS resolver: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("no address record for %q", name)
	}
	return resolved.Hex(), nil
}

// addressCall eth_calls selector+node on contract and decodes the reply as
// an address word. ok is false for the zero address, which ENS uses to mean
// "not set".
func addressCall(ctx context.Context, client *chain.Client, contract, selector, node string) (common.Address, bool, error) {
	raw, err := client.CallContract(ctx, contract, selector+node)
	if err != nil {
		return common.Address{}, false, err
	}
	addr, ok := wordToAddress(raw)
	return addr, ok, nil
}

// Namehash implements the EIP-137 hash. Labels are lowercased first, the
// usual stand-in for full UTS-46 normalisation, then hashed right to left:
//
//	namehash("")        = 32 zero bytes
//	namehash("foo.eth") = keccak256(namehash("eth") + keccak256("foo"))
func Namehash(name string) string {
	node := make([]byte, 32)
	if name == "" {
		return hex.EncodeToString(node)
	}

	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = keccak256(append(node, keccak256([]byte(labels[i]))...))
	}
	return hex.EncodeToString(node)
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// wordToAddress decodes a 32-byte ABI word into the address in its low 20
// bytes. ok is false for short or non-hex input and for the zero address.
func wordToAddress(word string) (common.Address, bool) {
	clean := strings.TrimPrefix(word, "0x")
	if len(clean) < 64 {
		return common.Address{}, false
	}
	b, err := hex.DecodeString(clean[24:64])
	if err != nil {
		return common.Address{}, false
	}
	addr := common.BytesToAddress(b)
	return addr, addr != (common.Address{})
}
