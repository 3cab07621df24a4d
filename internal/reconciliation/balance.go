package reconciliation

import (
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Calculate sums every bucket of a statement with exact decimal arithmetic.
// Net = Incoming + Rewards + Close - Outgoing - Fees.
func Calculate(stmt model.Statement) model.Balance {
	b := model.Balance{
		Incoming: sum(stmt.Incoming),
		Outgoing: sum(stmt.Outgoing),
		Fees:     sum(stmt.FeeIncurring),
		Rewards:  sum(stmt.Reward),
		Close:    sum(stmt.Close),
	}
	b.Net = b.Incoming.Add(b.Rewards).Add(b.Close).Sub(b.Outgoing).Sub(b.Fees)
	return b
}

func sum(entries []model.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
