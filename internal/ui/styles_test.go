package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// Message formatters
// ---------------------------------------------------------------------------

func TestFormattersPrefixAndMessage(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
		msg    string
	}{
		{"Success", Success, "✓", "donation recorded"},
		{"Warn", Warn, "⚠", "no wallet session"},
		{"Err", Err, "✗", "asset not approved"},
		{"Info", Info, "ℹ", "pool owner is 0x1111"},
		{"Hint", Hint, "💡", "run 'w3pool wallet unlock'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn(tt.msg)
			assert.Contains(t, out, tt.prefix)
			assert.Contains(t, out, tt.msg)
		})
	}
}

func TestFormattersKeepPrefixOnEmptyMessage(t *testing.T) {
	assert.Contains(t, Success(""), "✓")
	assert.Contains(t, Err(""), "✗")
}

func TestInfoAndHintDiffer(t *testing.T) {
	assert.NotEqual(t, Info("claim sent"), Hint("claim sent"))
}

func TestValueFormattersPassThrough(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
	}{
		{"Addr", Addr, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"},
		{"Val", Val, "1.500000000000000000"},
		{"Meta", Meta, "2026-01-02 15:04"},
		{"ChainName", ChainName, "WDEV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.fn(tt.in), tt.in)
		})
	}
}

// ---------------------------------------------------------------------------
// TruncateAddr
// ---------------------------------------------------------------------------

func TestTruncateAddr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Short", "0x1234", "0x1234"},
		{"ExactBoundary", "0x12345678", "0x12345678"},
		{"FullAddress", "0x1234567890abcdef1234567890abcdef12345678", "0x1234…5678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateAddr(tt.in))
		})
	}
}

// ---------------------------------------------------------------------------
// Boxes
// ---------------------------------------------------------------------------

func TestDangerBoxWrapsContent(t *testing.T) {
	out := DangerBox("private key: 0xac09...ff80")
	assert.Contains(t, out, "private key: 0xac09...ff80")
	// DoubleBorder chrome.
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "╚")
}

func TestDangerBoxMultiline(t *testing.T) {
	out := DangerBox("line one\nline two")
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
	assert.Greater(t, strings.Count(out, "\n"), 2)
}
