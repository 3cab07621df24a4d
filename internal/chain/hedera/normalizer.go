package hedera

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/hedera/dragonglass"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Normalize maps a DragonGlass transaction. The transfer list mixes the
// value movement with fee payments to the node and the fee collector; the
// sender is the account debited by the value movement (the payer's debit
// net of the fee) and the receiver is the largest non-fee credit.
func Normalize(raw json.RawMessage) (model.Transaction, error) {
	var tx dragonglass.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "dragonglass transaction", Value: string(raw), Err: err}
	}
	if tx.TransactionID == "" {
		return model.Transaction{}, &chain.DecodeError{Field: "transactionID", Value: string(raw), Err: fmt.Errorf("missing transaction id")}
	}
	ts, err := time.Parse(time.RFC3339Nano, tx.ConsensusTime)
	if err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "consensusTime", Value: tx.ConsensusTime, Err: err}
	}
	if tx.TransactionFee < 0 {
		return model.Transaction{}, &chain.DecodeError{Field: "transactionFee", Value: strconv.FormatInt(tx.TransactionFee, 10), Err: fmt.Errorf("negative fee")}
	}

	sender, receiver, value := valueMovement(tx)
	return model.Transaction{
		ID:        tx.TransactionID,
		Chain:     model.ChainHedera,
		Kind:      model.KindTransfer,
		Timestamp: ts.UTC(),
		Sender:    sender,
		Receiver:  receiver,
		Amount:    tinybars(value),
		Fee:       tinybars(tx.TransactionFee),
		Success:   tx.Status == "SUCCESS",
		Hedera:    &model.HederaPayload{Memo: tx.Memo},
	}, nil
}

func valueMovement(tx dragonglass.Transaction) (sender, receiver string, value int64) {
	var maxDebit int64
	for _, tr := range tx.Transfers {
		switch {
		case tr.Amount < 0:
			debit := -tr.Amount
			if tr.AccountID == tx.PayerID {
				debit -= tx.TransactionFee
			}
			if debit > maxDebit {
				maxDebit, sender = debit, tr.AccountID
			}
		case tr.Amount > 0:
			if tr.AccountID == tx.NodeID || tr.AccountID == FeeCollectorAccount {
				continue
			}
			if tr.Amount > value {
				value, receiver = tr.Amount, tr.AccountID
			}
		}
	}
	if sender == "" {
		sender = tx.PayerID
	}
	return sender, receiver, value
}

func tinybars(v int64) decimal.Decimal {
	return decimal.New(v, -tinybarDecimals)
}
