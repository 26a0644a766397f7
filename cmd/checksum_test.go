package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// checksumAddress
// ---------------------------------------------------------------------------

func TestChecksumAddressKnownVectors(t *testing.T) {
	tests := []struct {
		name string
		bare string
		want string
	}{
		{"VitalikAddress", "d8da6bf26964af9d7eed9e03e53415d37aa96045", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"},
		{"USDC", "a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{"ZeroAddress", "0000000000000000000000000000000000000000", "0x0000000000000000000000000000000000000000"},
		{"AllDigits", "0000000000000000000000000000000000000001", "0x0000000000000000000000000000000000000001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checksumAddress(tt.bare))
		})
	}
}

func TestChecksumAddressDiscardsInputCase(t *testing.T) {
	lower := checksumAddress("d8da6bf26964af9d7eed9e03e53415d37aa96045")
	upper := checksumAddress("D8DA6BF26964AF9D7EED9E03E53415D37AA96045")
	assert.Equal(t, lower, upper)
}

func TestChecksumAddressShape(t *testing.T) {
	got := checksumAddress("ffffffffffffffffffffffffffffffffffffffff")
	assert.Len(t, got, 42)
	assert.True(t, strings.HasPrefix(got, "0x"))
	assert.Equal(t, "0xFFfFfFffFFfffFFfFFfFFFFFffFFFffffFfFFFfF", got)
}

// ---------------------------------------------------------------------------
// checksumVerdict
// ---------------------------------------------------------------------------

func TestChecksumVerdict(t *testing.T) {
	checksummed := "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ExactMatch", checksummed, verdictChecksummed},
		{"AllLower", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", verdictCaseless},
		{"AllUpper", "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045", verdictCaseless},
		{"NoPrefixLower", "d8da6bf26964af9d7eed9e03e53415d37aa96045", verdictCaseless},
		{"WrongCasing", "0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045", verdictMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checksumVerdict(tt.input, checksummed))
		})
	}
}
