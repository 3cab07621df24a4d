package hedera

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CryptoTransfer(t *testing.T) {
	raw := json.RawMessage(`{
		"transactionID": "0.0.1234-1600000000-123456789",
		"consensusTime": "2020-09-13T12:26:40.123456789Z",
		"payerID": "0.0.1234",
		"nodeID": "0.0.3",
		"memo": "invoice 7",
		"transactionFee": 83000,
		"status": "SUCCESS",
		"type": "CRYPTO_TRANSFER",
		"transfers": [
			{"accountID": "0.0.1234", "amount": -100083000},
			{"accountID": "0.0.5678", "amount": 100000000},
			{"accountID": "0.0.3", "amount": 3000},
			{"accountID": "0.0.98", "amount": 80000}
		]
	}`)

	tx, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "0.0.1234-1600000000-123456789", tx.ID)
	assert.Equal(t, model.ChainHedera, tx.Chain)
	assert.Equal(t, time.Date(2020, 9, 13, 12, 26, 40, 123456789, time.UTC), tx.Timestamp)
	assert.Equal(t, "0.0.1234", tx.Sender)
	assert.Equal(t, "0.0.5678", tx.Receiver)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1)))
	assert.True(t, tx.Fee.Equal(decimal.RequireFromString("0.00083")))
	assert.True(t, tx.Success)
	require.NotNil(t, tx.Hedera)
	assert.Equal(t, "invoice 7", tx.Hedera.Memo)
	require.NoError(t, tx.Validate())
}

func TestNormalize_StakingRewardPayout(t *testing.T) {
	raw := json.RawMessage(`{
		"transactionID": "0.0.5678-1700000000-1",
		"consensusTime": "2023-11-14T22:13:20Z",
		"payerID": "0.0.5678",
		"nodeID": "0.0.4",
		"transactionFee": 100000,
		"status": "SUCCESS",
		"transfers": [
			{"accountID": "0.0.5678", "amount": -100000},
			{"accountID": "0.0.800", "amount": -2500000},
			{"accountID": "0.0.1234", "amount": 2500000},
			{"accountID": "0.0.4", "amount": 5000},
			{"accountID": "0.0.98", "amount": 95000}
		]
	}`)

	tx, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "0.0.800", tx.Sender)
	assert.Equal(t, "0.0.1234", tx.Receiver)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("0.025")))
}

func TestNormalize_FeeOnly(t *testing.T) {
	raw := json.RawMessage(`{
		"transactionID": "0.0.1234-1-1",
		"consensusTime": "2021-01-01T00:00:00Z",
		"payerID": "0.0.1234",
		"nodeID": "0.0.3",
		"transactionFee": 50000,
		"status": "INSUFFICIENT_PAYER_BALANCE",
		"transfers": [
			{"accountID": "0.0.1234", "amount": -50000},
			{"accountID": "0.0.3", "amount": 1000},
			{"accountID": "0.0.98", "amount": 49000}
		]
	}`)

	tx, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "0.0.1234", tx.Sender)
	assert.False(t, tx.HasReceiver())
	assert.True(t, tx.Amount.IsZero())
	assert.False(t, tx.Success)
	assert.True(t, tx.Fee.Equal(decimal.RequireFromString("0.0005")))
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{name: "malformed", raw: `{"transactionID":1}`, field: "dragonglass transaction"},
		{name: "missing id", raw: `{"consensusTime":"2021-01-01T00:00:00Z"}`, field: "transactionID"},
		{name: "bad time", raw: `{"transactionID":"x","consensusTime":"13/09/2020"}`, field: "consensusTime"},
		{name: "negative fee", raw: `{"transactionID":"x","consensusTime":"2021-01-01T00:00:00Z","transactionFee":-1}`, field: "transactionFee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(json.RawMessage(tt.raw))
			var decodeErr *chain.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tt.field, decodeErr.Field)
		})
	}
}
