package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// pad
// ---------------------------------------------------------------------------

func TestPadFillsToWidth(t *testing.T) {
	assert.Equal(t, "WDEV      ", pad("WDEV", 10))
	assert.Equal(t, "exact", pad("exact", 5))
	assert.Equal(t, "    ", pad("", 4))
}

func TestPadTruncatesOverflow(t *testing.T) {
	assert.Equal(t, "0x123456", pad("0x1234567890abcdef", 8))
}

func TestPadMeasuresDisplayCells(t *testing.T) {
	// The wrapped-native marker is multi-byte but one cell wide.
	assert.Equal(t, "◈ WDEV    ", pad("◈ WDEV", 10))
}

func TestPadIgnoresEscapeCodes(t *testing.T) {
	got := pad(StyleSuccess.Render("ok"), 6)
	assert.True(t, strings.HasSuffix(got, "    "), "expected four fill spaces, got %q", got)
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestTableRenderBalances(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "ASSET", Width: 8},
		{Title: "BALANCE", Width: 24},
		{Title: "APPROVED", Width: 9},
	})
	tbl.AddRow(Row{"WDEV", "100.000000000000000000", "yes"})
	tbl.AddRow(Row{"USDP", "250.250000", "no"})

	out := tbl.Render()
	for _, want := range []string{"ASSET", "BALANCE", "APPROVED", "WDEV", "USDP", "250.250000"} {
		assert.Contains(t, out, want)
	}
}

func TestTableRenderHasDivider(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Col", Width: 8}})
	assert.Contains(t, tbl.Render(), "--------")
}

func TestTableHeaderOnly(t *testing.T) {
	tbl := NewTable([]Column{{Title: "EVENT", Width: 10}})
	out := tbl.Render()
	assert.Contains(t, out, "EVENT")
	assert.Equal(t, 2, strings.Count(out, "\n"), "header and divider lines only")
}

func TestTableShortRow(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "A", Width: 6},
		{Title: "B", Width: 6},
		{Title: "C", Width: 6},
	})
	tbl.AddRow(Row{"only"})

	// Missing cells render empty, no panic.
	assert.Contains(t, tbl.Render(), "only")
}

func TestTableRowOrderPreserved(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Item", Width: 10}})
	tbl.AddRow(Row{"first"})
	tbl.AddRow(Row{"second"})
	tbl.AddRow(Row{"third"})

	out := tbl.Render()
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "third"))
}

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContents(t *testing.T) {
	out := KeyValueBlock("Pool Status", [][2]string{
		{"Backend", "devnet"},
		{"Owner", "0x1111"},
	})
	for _, want := range []string{"Pool Status", "Backend", "devnet", "Owner", "0x1111"} {
		assert.Contains(t, out, want)
	}
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	out := KeyValueBlock("Config", [][2]string{
		{"First", "AAA"},
		{"Second", "BBB"},
		{"Third", "CCC"},
	})
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "Second"))
	assert.Less(t, strings.Index(out, "Second"), strings.Index(out, "Third"))
}

func TestKeyValueBlockTitleOptional(t *testing.T) {
	out := KeyValueBlock("", [][2]string{{"Key", "Value"}})
	assert.Contains(t, out, "Key")
	assert.Contains(t, out, "Value")
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	out := KeyValueBlock("Bordered", [][2]string{{"Key", "Val"}})
	// lipgloss RoundedBorder corners.
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╰")
}

// ---------------------------------------------------------------------------
// Banner
// ---------------------------------------------------------------------------

func TestBannerBranding(t *testing.T) {
	out := Banner()
	assert.Contains(t, out, "Donation Pool CLI")
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "devnet")
}
