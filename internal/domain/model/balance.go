package model

import "github.com/shopspring/decimal"

// Balance aggregates a Statement. It is always derived on demand and never
// stored.
type Balance struct {
	Incoming decimal.Decimal
	Outgoing decimal.Decimal
	Fees     decimal.Decimal
	Rewards  decimal.Decimal
	Close    decimal.Decimal
	Net      decimal.Decimal
}
