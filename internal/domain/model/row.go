package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one CoinTracking ledger line. Amount columns left zero are written
// as empty cells.
type Row struct {
	Type         ActivityType
	BuyAmount    decimal.Decimal
	BuyCurrency  string
	SellAmount   decimal.Decimal
	SellCurrency string
	Fee          decimal.Decimal
	FeeCurrency  string
	Exchange     string
	Group        string
	Comment      string
	Date         time.Time
	TxID         string
}

// Patch is a manually authored correction for the row with the same TxID.
// Nil fields leave the generated value untouched; Comment is appended rather
// than replacing the generated comment.
type Patch struct {
	TxID         string
	Type         *ActivityType
	BuyAmount    *decimal.Decimal
	BuyCurrency  *string
	SellAmount   *decimal.Decimal
	SellCurrency *string
	Fee          *decimal.Decimal
	FeeCurrency  *string
	Exchange     *string
	Group        *string
	Comment      *string
}
