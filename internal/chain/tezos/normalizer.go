package tezos

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/tezos/tzkt"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Normalize maps any TzKT operation the exporter requests. The baker fee is
// the fee proper; storage and allocation burns travel in the Tezos payload.
func Normalize(raw json.RawMessage) (model.Transaction, error) {
	var op tzkt.Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "tzkt operation", Value: string(raw), Err: err}
	}
	if op.Hash == "" {
		return model.Transaction{}, &chain.DecodeError{Field: "hash", Value: string(raw), Err: fmt.Errorf("missing operation hash")}
	}

	ts, err := time.Parse(time.RFC3339, op.Timestamp)
	if err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "timestamp", Value: op.Timestamp, Err: err}
	}

	tx := model.Transaction{
		ID:        fmt.Sprintf("%s/%d", op.Hash, op.ID),
		Chain:     model.ChainTezos,
		Block:     op.Level,
		Timestamp: ts.UTC(),
		Success:   op.Status == "applied",
		Sender:    address(op.Sender),
		Amount:    decimal.Zero,
	}

	if tx.Fee, err = mutez("bakerFee", op.BakerFee); err != nil {
		return model.Transaction{}, err
	}
	storage, err := mutez("storageFee", op.StorageFee)
	if err != nil {
		return model.Transaction{}, err
	}
	allocation, err := mutez("allocationFee", op.AllocationFee)
	if err != nil {
		return model.Transaction{}, err
	}
	tx.Tezos = &model.TezosPayload{Burn: storage.Add(allocation)}

	switch op.Type {
	case "transaction":
		tx.Kind = model.KindTransfer
		tx.Receiver = address(op.Target)
		if tx.Receiver == "" {
			return model.Transaction{}, &model.InvariantError{ID: tx.ID, Reason: "transaction without target"}
		}
		if tx.Amount, err = mutez("amount", op.Amount); err != nil {
			return model.Transaction{}, err
		}
	case "origination":
		tx.Kind = model.KindOrigination
		tx.Receiver = address(op.OriginatedContract)
		if tx.Amount, err = mutez("contractBalance", op.ContractBalance); err != nil {
			return model.Transaction{}, err
		}
	case "activation":
		tx.Kind = model.KindActivation
		tx.Receiver = address(op.Account)
		if tx.Receiver == "" {
			return model.Transaction{}, &model.InvariantError{ID: tx.ID, Reason: "activation without account"}
		}
		// Activations carry no status; they are included only once applied.
		tx.Success = true
		if tx.Amount, err = mutez("balance", op.Balance); err != nil {
			return model.Transaction{}, err
		}
	case "reveal":
		tx.Kind = model.KindReveal
	case "delegation":
		// The delegated balance never leaves the account.
		tx.Kind = model.KindDelegation
	default:
		return model.Transaction{}, &chain.DecodeError{Field: "type", Value: op.Type, Err: fmt.Errorf("unsupported operation type")}
	}
	return tx, nil
}

func mutez(field string, n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return chain.ParseBaseUnits(field, n.String(), mutezDecimals)
}

func address(a *tzkt.Alias) string {
	if a == nil {
		return ""
	}
	return a.Address
}
