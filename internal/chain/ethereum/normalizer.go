package ethereum

import (
	"encoding/json"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/ethereum/etherscan"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// NormalizeNormal maps a txlist record. The fee is gasUsed × gasPrice and is
// charged whether or not the transaction succeeded.
func NormalizeNormal(raw json.RawMessage) (model.Transaction, error) {
	var tx etherscan.NormalTx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "txlist record", Value: string(raw), Err: err}
	}

	out, err := baseTransaction(tx.Hash, tx.BlockNumber, tx.TimeStamp, tx.Value)
	if err != nil {
		return model.Transaction{}, err
	}
	out.Kind = model.KindTransfer
	out.Sender = tx.From
	out.Receiver = receiverOf(tx.To, tx.ContractAddress)
	out.Success = tx.IsError == "0" && tx.TxReceiptStatus != "0"

	gasUsed, err := chain.ParseBaseUnits("gasUsed", tx.GasUsed, 0)
	if err != nil {
		return model.Transaction{}, err
	}
	gasPrice, err := chain.ParseBaseUnits("gasPrice", tx.GasPrice, 0)
	if err != nil {
		return model.Transaction{}, err
	}
	out.Fee = gasUsed.Mul(gasPrice).Shift(-weiDecimals)
	return out, nil
}

// NormalizeInternal maps a txlistinternal record. Internal transfers carry no
// fee of their own; the parent transaction pays it. A transaction can emit
// several internal transfers, so any trace beyond the first is suffixed to
// keep identifiers distinct while the first keeps the bare hash.
func NormalizeInternal(raw json.RawMessage) (model.Transaction, error) {
	var tx etherscan.InternalTx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "txlistinternal record", Value: string(raw), Err: err}
	}

	out, err := baseTransaction(tx.Hash, tx.BlockNumber, tx.TimeStamp, tx.Value)
	if err != nil {
		return model.Transaction{}, err
	}
	if tx.TraceID != "" && tx.TraceID != "0" {
		out.ID = tx.Hash + "#" + tx.TraceID
	}
	out.Kind = model.KindInternal
	out.Sender = tx.From
	out.Receiver = receiverOf(tx.To, tx.ContractAddress)
	out.Success = tx.IsError == "0"
	out.Fee = decimal.Zero
	return out, nil
}

func baseTransaction(hash, block, timestamp, value string) (model.Transaction, error) {
	blockNum, err := chain.ParseInt("blockNumber", block)
	if err != nil {
		return model.Transaction{}, err
	}
	ts, err := chain.ParseUnixSeconds("timeStamp", timestamp)
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := chain.ParseBaseUnits("value", value, weiDecimals)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:        hash,
		Chain:     model.ChainEthereum,
		Block:     blockNum,
		Timestamp: ts,
		Amount:    amount,
	}, nil
}

// receiverOf resolves the credited account; contract creations have an empty
// "to" and report the new contract instead.
func receiverOf(to, contractAddress string) string {
	if to != "" {
		return to
	}
	return contractAddress
}
