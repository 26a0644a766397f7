package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rowValue(t *testing.T, rows [][2]string, key string) string {
	t.Helper()
	for _, r := range rows {
		if r[0] == key {
			return r[1]
		}
	}
	t.Fatalf("row %q not found in %v", key, rows)
	return ""
}

// ---------------------------------------------------------------------------
// convertHumanUnits
// ---------------------------------------------------------------------------

func TestConvertHumanUnits_NativeAmount(t *testing.T) {
	rows, err := convertHumanUnits("1.5", 18)
	assert.NoError(t, err)
	assert.Equal(t, "1500000000000000000", rowValue(t, rows, "Base units"))
	assert.Equal(t, "0x14d1120d7b160000", rowValue(t, rows, "Hex"))
}

func TestConvertHumanUnits_SixDecimalToken(t *testing.T) {
	rows, err := convertHumanUnits("250.25", 6)
	assert.NoError(t, err)
	assert.Equal(t, "250250000", rowValue(t, rows, "Base units"))
}

func TestConvertHumanUnits_RejectsNegative(t *testing.T) {
	_, err := convertHumanUnits("-1", 18)
	assert.Error(t, err)
}

func TestConvertHumanUnits_RejectsTooPrecise(t *testing.T) {
	_, err := convertHumanUnits("0.1234567", 6)
	assert.ErrorContains(t, err, "decimal places")
}

// ---------------------------------------------------------------------------
// convertBaseUnits
// ---------------------------------------------------------------------------

func TestConvertBaseUnits_RendersHuman(t *testing.T) {
	rows, err := convertBaseUnits("1500000000000000000", 18)
	assert.NoError(t, err)
	assert.Equal(t, "1.500000000000000000", rowValue(t, rows, "Amount"))
	assert.Equal(t, "0x14d1120d7b160000", rowValue(t, rows, "Hex"))
}

func TestConvertBaseUnits_RejectsFraction(t *testing.T) {
	_, err := convertBaseUnits("1.5", 18)
	assert.Error(t, err)
}

func TestConvertBaseUnits_RejectsNegative(t *testing.T) {
	_, err := convertBaseUnits("-5", 18)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// convertHexBase
// ---------------------------------------------------------------------------

func TestConvertHexBase_RPCWord(t *testing.T) {
	rows, err := convertHexBase("0x14d1120d7b160000", 18)
	assert.NoError(t, err)
	assert.Equal(t, "1500000000000000000", rowValue(t, rows, "Base units"))
	assert.Equal(t, "1.500000000000000000", rowValue(t, rows, "Amount"))
}

func TestConvertHexBase_UppercasePrefix(t *testing.T) {
	rows, err := convertHexBase("0XFF", 18)
	assert.NoError(t, err)
	assert.Equal(t, "255", rowValue(t, rows, "Base units"))
}

func TestConvertHexBase_RejectsGarbage(t *testing.T) {
	_, err := convertHexBase("0xzz", 18)
	assert.Error(t, err)
}
