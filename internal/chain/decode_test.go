package chain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		exp      int32
		expected string
	}{
		{"one ether in wei", "1000000000000000000", 18, "1"},
		{"hex wei", "0xde0b6b3a7640000", 18, "1"},
		{"mutez", "1500000", 6, "1.5"},
		{"zero", "0", 6, "0"},
		{"tinybars", "12345", 8, "0.00012345"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBaseUnits("value", tc.value, tc.exp)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(got), "got %s", got)
		})
	}
}

func TestParseBaseUnits_Errors(t *testing.T) {
	for _, value := range []string{"", "12.5", "0xzz", "-10", "abc"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseBaseUnits("value", value, 18)
			require.Error(t, err)

			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, "value", decErr.Field)
			assert.Equal(t, value, decErr.Value)
		})
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("amount", "12.3456")
	require.NoError(t, err)
	assert.Equal(t, "12.3456", d.String())

	_, err = ParseDecimal("amount", "-1")
	require.Error(t, err)

	_, err = ParseDecimal("amount", "1e")
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, decErr.Error(), `"1e"`)
}

func TestParseUnixSeconds(t *testing.T) {
	ts, err := ParseUnixSeconds("timeStamp", "1600000000")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), ts)

	_, err = ParseUnixSeconds("timeStamp", "soon")
	require.Error(t, err)
}

func TestParseInt_Hex(t *testing.T) {
	n, err := ParseInt("blockNumber", "0x10")
	require.NoError(t, err)
	assert.Equal(t, int64(16), n)
}
