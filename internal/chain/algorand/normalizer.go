package algorand

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/algorand/algoexplorer"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Normalize maps a v1 transaction. Only payments move ALGO; other types
// (key registration, asset operations) are kept for their fee and the
// sender's participation rewards, with no receiver and a zero amount.
func Normalize(raw json.RawMessage) (model.Transaction, error) {
	var tx algoexplorer.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "algorand transaction", Value: string(raw), Err: err}
	}
	if tx.TxID == "" {
		return model.Transaction{}, &chain.DecodeError{Field: "tx", Value: string(raw), Err: fmt.Errorf("missing transaction id")}
	}
	if tx.Timestamp <= 0 {
		return model.Transaction{}, &chain.DecodeError{Field: "timestamp", Value: fmt.Sprint(tx.Timestamp), Err: fmt.Errorf("missing timestamp")}
	}

	out := model.Transaction{
		ID:        tx.TxID,
		Chain:     model.ChainAlgorand,
		Kind:      model.KindTransfer,
		Block:     tx.Round,
		Timestamp: time.Unix(tx.Timestamp, 0).UTC(),
		Sender:    tx.From,
		Amount:    decimal.Zero,
		Fee:       microAlgos(tx.Fee),
		Success:   tx.PoolError == "",
		Algorand: &model.AlgorandPayload{
			SenderRewards: microAlgos(tx.FromRewards),
		},
	}

	if tx.Type == "pay" {
		if tx.Payment == nil {
			return model.Transaction{}, &model.InvariantError{ID: tx.TxID, Reason: "payment without payment fields"}
		}
		p := tx.Payment
		out.Receiver = p.To
		out.Amount = microAlgos(p.Amount)
		out.Algorand.ReceiverRewards = microAlgos(p.ToRewards)
		out.Algorand.CloseTo = p.Close
		out.Algorand.CloseAmount = microAlgos(p.CloseAmount)
		out.Algorand.CloseRewards = microAlgos(p.CloseRewards)
	}
	return out, nil
}

func microAlgos(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -microAlgoDecimals)
}
