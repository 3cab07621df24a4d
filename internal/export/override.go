package export

import (
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
)

// ApplyOverrides returns a copy of rows with known-transaction corrections
// applied. A row takes the first patch with its TxID; later patches for the
// same identifier are ignored. Patches for identifiers absent from rows are
// ignored as well.
//
// Exchange, Group and Comment apply to every row of the transaction. Type,
// amounts and currencies describe the value movement: they skip the "Other
// Fee" row of a transaction that also has a value row, so a corrected sale
// never overwrites its fee. A fee-only transaction takes the whole patch.
func ApplyOverrides(rows []model.Row, patches []model.Patch) ([]model.Row, int) {
	byID := make(map[string]model.Patch, len(patches))
	for _, p := range patches {
		if _, ok := byID[p.TxID]; !ok {
			byID[p.TxID] = p
		}
	}

	hasValueRow := make(map[string]bool)
	for _, row := range rows {
		if row.Type != model.ActivityOtherFee {
			hasValueRow[row.TxID] = true
		}
	}

	out := make([]model.Row, len(rows))
	applied := 0
	for i, row := range rows {
		if p, ok := byID[row.TxID]; ok {
			feeOfValueTx := row.Type == model.ActivityOtherFee && hasValueRow[row.TxID]
			row = applyPatch(row, p, !feeOfValueTx)
			applied++
		}
		out[i] = row
	}
	return out, applied
}

func applyPatch(row model.Row, p model.Patch, value bool) model.Row {
	if value {
		if p.Type != nil {
			row.Type = *p.Type
		}
		if p.BuyAmount != nil {
			row.BuyAmount = *p.BuyAmount
		}
		if p.BuyCurrency != nil {
			row.BuyCurrency = *p.BuyCurrency
		}
		if p.SellAmount != nil {
			row.SellAmount = *p.SellAmount
		}
		if p.SellCurrency != nil {
			row.SellCurrency = *p.SellCurrency
		}
		if p.Fee != nil {
			row.Fee = *p.Fee
		}
		if p.FeeCurrency != nil {
			row.FeeCurrency = *p.FeeCurrency
		}
	}
	if p.Exchange != nil {
		row.Exchange = *p.Exchange
	}
	if p.Group != nil {
		row.Group = *p.Group
	}
	if p.Comment != nil {
		row.Comment = join(row.Comment, *p.Comment)
	}
	return row
}
