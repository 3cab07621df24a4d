package export

import (
	"slices"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
)

// CommentPrefix starts the comment of every generated row so exported rows
// can be told apart from manually entered ones in CoinTracking.
const CommentPrefix = "Export"

// BuildRows turns a statement into CoinTracking rows, newest first. Every
// entry becomes one row; a transaction that moved value and paid a fee
// yields a value row and a separate "Other Fee" row.
func BuildRows(stmt model.Statement) []model.Row {
	currency := stmt.Chain.Currency()
	exchange := stmt.Chain.DisplayName()

	var rows []model.Row
	for _, bucket := range model.Buckets {
		for _, e := range stmt.Bucket(bucket) {
			row := model.Row{
				Type:     model.ClassifyActivity(bucket, e.Tx.Kind),
				Exchange: exchange,
				Comment:  comment(bucket, e.Tx),
				Date:     e.Tx.Timestamp.UTC(),
				TxID:     e.Tx.ID,
			}
			switch bucket {
			case model.BucketOutgoing, model.BucketFeeIncurring:
				row.SellAmount = e.Amount
				row.SellCurrency = currency
			default:
				row.BuyAmount = e.Amount
				row.BuyCurrency = currency
			}
			rows = append(rows, row)
		}
	}

	slices.SortStableFunc(rows, func(a, b model.Row) int {
		return b.Date.Compare(a.Date)
	})
	return rows
}

func comment(bucket model.Bucket, tx model.Transaction) string {
	note := ""
	switch bucket {
	case model.BucketIncoming:
		if tx.Kind == model.KindInternal {
			note = "Internal"
		}
	case model.BucketReward:
		note = "Reward"
	case model.BucketClose:
		if tx.Kind == model.KindActivation {
			note = "Activation"
		} else {
			note = "Close remainder"
		}
	case model.BucketFeeIncurring:
		if !tx.Success {
			note = "Failed transaction fee"
		} else {
			note = "Fee"
		}
	}
	if tx.Hedera != nil && tx.Hedera.Memo != "" {
		note = join(note, "Memo: "+tx.Hedera.Memo)
	}
	return join(CommentPrefix, note)
}

func join(base, note string) string {
	switch {
	case note == "":
		return base
	case base == "":
		return note
	default:
		return base + ". " + note
	}
}
