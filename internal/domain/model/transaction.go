package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a chain-native record mapped into the shared canonical
// shape. Amount and Fee are expressed in the chain's display unit (ETH, XTZ,
// ...), never in base units, and are never negative. Direction is not stored;
// it is derived by comparing Sender and Receiver against a subject account.
type Transaction struct {
	ID        string
	Chain     Chain
	Kind      TxKind
	Block     int64
	Timestamp time.Time
	Sender    string
	Receiver  string // empty for operations without a counterparty
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	Success   bool

	Tezos    *TezosPayload
	Algorand *AlgorandPayload
	Hedera   *HederaPayload
}

// TezosPayload carries the storage and allocation burn paid by the sender on
// top of the baker fee.
type TezosPayload struct {
	Burn decimal.Decimal
}

// AlgorandPayload carries the close-remainder and participation reward
// sub-fields of an Algorand payment.
type AlgorandPayload struct {
	CloseTo         string
	CloseAmount     decimal.Decimal
	SenderRewards   decimal.Decimal
	ReceiverRewards decimal.Decimal
	CloseRewards    decimal.Decimal
}

type HederaPayload struct {
	Memo string
}

// HasReceiver reports whether the operation has a resolvable receiver.
func (t Transaction) HasReceiver() bool {
	return t.Receiver != ""
}

// Validate checks the invariants every normalizer must uphold.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return &InvariantError{ID: "<empty>", Reason: "transaction identifier is empty"}
	}
	if t.Amount.IsNegative() {
		return &InvariantError{ID: t.ID, Reason: fmt.Sprintf("negative amount %s", t.Amount)}
	}
	if t.Fee.IsNegative() {
		return &InvariantError{ID: t.ID, Reason: fmt.Sprintf("negative fee %s", t.Fee)}
	}
	if t.Tezos != nil && t.Tezos.Burn.IsNegative() {
		return &InvariantError{ID: t.ID, Reason: fmt.Sprintf("negative burn %s", t.Tezos.Burn)}
	}
	if p := t.Algorand; p != nil {
		for _, v := range []decimal.Decimal{p.CloseAmount, p.SenderRewards, p.ReceiverRewards, p.CloseRewards} {
			if v.IsNegative() {
				return &InvariantError{ID: t.ID, Reason: fmt.Sprintf("negative algorand sub-field %s", v)}
			}
		}
	}
	if t.Timestamp.IsZero() {
		return &InvariantError{ID: t.ID, Reason: "missing timestamp"}
	}
	return nil
}

// InvariantError reports a record that violates a domain invariant, such as
// an operation that is expected to have a receiver but does not.
type InvariantError struct {
	ID     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("transaction %s: %s", e.ID, e.Reason)
}

// NewestFirst orders transactions by descending timestamp; ties are broken by
// identifier so the order is deterministic.
func NewestFirst(a, b Transaction) int {
	if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
