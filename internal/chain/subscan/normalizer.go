package subscan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/subscan/api"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Identifiers are event indexes ("<block>-<event>"): one extrinsic can emit
// several transfers, and rewards have no extrinsic of their own.
type normalizer struct {
	network Network
}

func (n *normalizer) NormalizeTransfer(raw json.RawMessage) (model.Transaction, error) {
	var tr api.Transfer
	if err := json.Unmarshal(raw, &tr); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "subscan transfer", Value: string(raw), Err: err}
	}
	if tr.BlockNum <= 0 {
		return model.Transaction{}, &chain.DecodeError{Field: "block_num", Value: string(raw), Err: fmt.Errorf("missing block number")}
	}
	if tr.BlockTimestamp <= 0 {
		return model.Transaction{}, &chain.DecodeError{Field: "block_timestamp", Value: string(raw), Err: fmt.Errorf("missing block timestamp")}
	}

	amount, err := chain.ParseDecimal("amount", tr.Amount)
	if err != nil {
		return model.Transaction{}, err
	}
	fee := decimal.Zero
	if tr.Fee != "" {
		if fee, err = chain.ParseBaseUnits("fee", tr.Fee, n.network.Decimals); err != nil {
			return model.Transaction{}, err
		}
	}

	return model.Transaction{
		ID:        fmt.Sprintf("%d-%d", tr.BlockNum, tr.EventIdx),
		Chain:     n.network.Chain,
		Kind:      model.KindTransfer,
		Block:     tr.BlockNum,
		Timestamp: time.Unix(tr.BlockTimestamp, 0).UTC(),
		Sender:    tr.From,
		Receiver:  tr.To,
		Amount:    amount,
		Fee:       fee,
		Success:   tr.Success,
	}, nil
}

// NormalizeReward maps a staking reward. Rewards are minted and have no
// sender, even when the payee is the validator stash itself.
func (n *normalizer) NormalizeReward(raw json.RawMessage) (model.Transaction, error) {
	var rw api.Reward
	if err := json.Unmarshal(raw, &rw); err != nil {
		return model.Transaction{}, &chain.DecodeError{Field: "subscan reward", Value: string(raw), Err: err}
	}
	blockPart, _, ok := strings.Cut(rw.EventIndex, "-")
	if !ok {
		return model.Transaction{}, &chain.DecodeError{Field: "event_index", Value: rw.EventIndex, Err: fmt.Errorf("want <block>-<event>")}
	}
	block, err := chain.ParseInt("event_index", blockPart)
	if err != nil {
		return model.Transaction{}, err
	}
	if rw.BlockTimestamp <= 0 {
		return model.Transaction{}, &chain.DecodeError{Field: "block_timestamp", Value: string(raw), Err: fmt.Errorf("missing block timestamp")}
	}
	amount, err := chain.ParseBaseUnits("amount", rw.Amount, n.network.Decimals)
	if err != nil {
		return model.Transaction{}, err
	}

	receiver := rw.Account
	if receiver == "" {
		receiver = rw.Stash
	}
	return model.Transaction{
		ID:        rw.EventIndex,
		Chain:     n.network.Chain,
		Kind:      model.KindReward,
		Block:     block,
		Timestamp: time.Unix(rw.BlockTimestamp, 0).UTC(),
		Receiver:  receiver,
		Amount:    amount,
		Fee:       decimal.Zero,
		Success:   true,
	}, nil
}
