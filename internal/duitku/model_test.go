package duitku

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{`10000`, 10000},
		{`10000.0`, 10000},
		{`10000.99`, 10000},
		{`"10000"`, 10000},
		{`"10000.0"`, 10000},
		{`" 2500.5 "`, 2500},
		{`""`, 0},
		{`null`, 0},
		{`1e4`, 10000},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tc.in), &a))
			assert.Equal(t, tc.want, int64(a))
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(`"ten thousand"`), &a))
		assert.Error(t, json.Unmarshal([]byte(`true`), &a))
	})
}

func TestParseAmount(t *testing.T) {
	n, err := ParseAmount("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), n)

	_, err = ParseAmount("9223372036854775808")
	assert.Error(t, err)

	_, err = ParseAmount("9223372036854775808.5")
	assert.Error(t, err)

	n, err = ParseAmount("-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), n)

	_, err = ParseAmount("1e30")
	assert.Error(t, err)

	_, err = ParseAmount("NaN")
	assert.Error(t, err)
}

func TestCodeNames(t *testing.T) {
	assert.Equal(t, "Success", ResponseSuccess.Name())
	assert.Equal(t, "Unknown", ResponseCode("99").Name())

	assert.Equal(t, "Success", PaymentSuccess.Name())
	assert.Equal(t, "Pending", PaymentPending.Name())
	assert.Equal(t, "Failed", PaymentFailed.Name())
	assert.Equal(t, "Unknown", PaymentCode("").Name())

	assert.Equal(t, "Success", CallbackSuccess.Name())
	assert.Equal(t, "Failed", CallbackFailed.Name())
}

func TestClassifyBody(t *testing.T) {
	assert.ErrorIs(t, classifyBody("INVALID SIGNATURE", channelFoundRules), ErrInvalidSignature)
	assert.ErrorIs(t, classifyBody("Transaction not found", channelFoundRules), ErrTransactionNotFound)
	assert.ErrorIs(t, classifyBody("Transaction not found", channelRules), ErrGatewayResponse)
	assert.ErrorIs(t, classifyBody("anything", nil), ErrGatewayResponse)

	// first matching rule wins
	assert.ErrorIs(t, classifyBody("Wrong signature; payment channel not available", channelRules), ErrInvalidSignature)
}
