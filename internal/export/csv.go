package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DateLayout is the CoinTracking import date format. Dates are written in UTC.
const DateLayout = "2006-01-02 15:04:05"

// Header is the CoinTracking CSV import column order.
var Header = []string{
	"Type", "Buy Amount", "Buy Currency", "Sell Amount", "Sell Currency",
	"Fee", "Fee Currency", "Exchange", "Trade-Group", "Comment", "Date", "Tx-ID",
}

// WriteCSV writes rows with a header line. Zero amounts are written as empty
// cells.
func WriteCSV(w io.Writer, rows []model.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			string(r.Type),
			amount(r.BuyAmount),
			r.BuyCurrency,
			amount(r.SellAmount),
			r.SellCurrency,
			amount(r.Fee),
			r.FeeCurrency,
			r.Exchange,
			r.Group,
			r.Comment,
			r.Date.UTC().Format(DateLayout),
			r.TxID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", r.TxID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
