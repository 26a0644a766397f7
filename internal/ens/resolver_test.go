package ens

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3pool/internal/chain"
)

// ---------------------------------------------------------------------------
// Namehash
// ---------------------------------------------------------------------------

func TestNamehashSpecVectors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", "0000000000000000000000000000000000000000000000000000000000000000"},
		{"TLD", "eth", "93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"SecondLevel", "foo.eth", "de9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
		{"AliceExample", "alice.eth", "787192fc5378cc32aa956ddfdedbf26b24e8d78e40109add0eea2c1a012c3dec"},
		{"Subdomain", "donor.pool.eth", "90b6575761145004ff670cef06bcbed5a4b25a3b4dda7e686aad2e26c1ea128c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Namehash(tt.in))
		})
	}
}

func TestNamehashFoldsCase(t *testing.T) {
	// EIP-137 requires normalised input; lowercasing covers the common case,
	// so Pool.ETH and pool.eth name the same node.
	assert.Equal(t, Namehash("pool.eth"), Namehash("Pool.ETH"))
}

func TestNamehashDistinctNames(t *testing.T) {
	assert.NotEqual(t, Namehash("alice.eth"), Namehash("bob.eth"))
	assert.NotEqual(t, Namehash("pool.eth"), Namehash("donor.pool.eth"))
}

// ---------------------------------------------------------------------------
// IsName
// ---------------------------------------------------------------------------

func TestIsName(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"vitalik.eth", true},
		{"donor.pool.eth", true},
		{"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", false},
		{"0Xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", false},
		{"alice", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsName(tt.input), "input: %q", tt.input)
	}
}

// ---------------------------------------------------------------------------
// helpers — sequenced eth_call mock
// ---------------------------------------------------------------------------

// ensRPCMock answers the first eth_call with responses["resolver"] and the
// second with responses["addr"], matching the two-step registry walk.
func ensRPCMock(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	callCount := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
			ID     int           `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")

		if req.Method == "eth_call" {
			callCount++
			key := ""
			switch callCount {
			case 1:
				key = "resolver"
			case 2:
				key = "addr"
			}
			if result, ok := responses[key]; ok {
				json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
					"jsonrpc": "2.0",
					"id":      req.ID,
					"result":  result,
				})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
		})
	}))
}

const (
	zeroWord     = "0x0000000000000000000000000000000000000000000000000000000000000000"
	resolverWord = "0x0000000000000000000000004976fb03c32e5b8cfe2b6ccb31c09ba78ebaba41" // public resolver
	vitalikWord  = "0x000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa96045"
)

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolveReturnsChecksummedAddress(t *testing.T) {
	srv := ensRPCMock(t, map[string]string{
		"resolver": resolverWord,
		"addr":     vitalikWord,
	})
	defer srv.Close()

	address, err := Resolve(context.Background(), chain.NewClient(srv.URL), "vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", address)
}

func TestResolveNoResolver(t *testing.T) {
	srv := ensRPCMock(t, map[string]string{"resolver": zeroWord})
	defer srv.Close()

	_, err := Resolve(context.Background(), chain.NewClient(srv.URL), "nonexistent.eth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolver")
}

func TestResolveNoAddressRecord(t *testing.T) {
	srv := ensRPCMock(t, map[string]string{
		"resolver": resolverWord,
		"addr":     zeroWord,
	})
	defer srv.Close()

	_, err := Resolve(context.Background(), chain.NewClient(srv.URL), "unset.eth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no address record")
}

func TestResolveRegistryError(t *testing.T) {
	// No eth_call handler at all: the registry query itself fails.
	srv := ensRPCMock(t, map[string]string{})
	defer srv.Close()

	_, err := Resolve(context.Background(), chain.NewClient(srv.URL), "broken.eth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying ENS registry")
}

// ---------------------------------------------------------------------------
// wordToAddress
// ---------------------------------------------------------------------------

func TestWordToAddress(t *testing.T) {
	tests := []struct {
		name   string
		word   string
		want   common.Address
		wantOK bool
	}{
		{"Valid", vitalikWord, common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"), true},
		{"NoPrefix", vitalikWord[2:], common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"), true},
		{"ZeroIsNotSet", zeroWord, common.Address{}, false},
		{"TooShort", "0xabcd", common.Address{}, false},
		{"NotHex", "0x" + strings.Repeat("0", 24) + "zz" + strings.Repeat("0", 38), common.Address{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := wordToAddress(tt.word)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
