package chain

import (
	"context"
	"encoding/json"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mocks/mock_adapter.go -package=mocks . LedgerSource,Normalizer,BalanceQuerier

// LedgerSource abstracts one paginated transaction-history endpoint of a chain
// explorer so the fetcher operates chain-agnostically. A chain can expose more
// than one source (e.g. Etherscan normal and internal transactions).
type LedgerSource interface {
	// Chain returns the chain identifier (e.g., "ethereum", "tezos").
	Chain() model.Chain

	// Stream names the history this source walks (e.g., "normal", "internal").
	Stream() string

	// FetchPage fetches at most limit raw records for account, skipping the
	// first offset records of the provider's ordering. A page shorter than
	// limit signals that the provider has no more records.
	FetchPage(ctx context.Context, account string, limit, offset int) ([]json.RawMessage, error)
}

// Normalizer maps one raw record returned by a LedgerSource into the
// canonical transaction shape. It is pure and fails with a *DecodeError on
// malformed numeric or hex fields.
type Normalizer interface {
	Normalize(raw json.RawMessage) (model.Transaction, error)
}

// BalanceQuerier is implemented by explorers that report the current native
// balance of an account.
type BalanceQuerier interface {
	GetBalance(ctx context.Context, account string) (decimal.Decimal, error)
}

// Exporter is everything an export run needs from one chain: its
// transaction-history streams, its current-balance query and the check that
// the subject account is well formed for the chain.
type Exporter interface {
	BalanceQuerier
	Streams() []Stream
	ValidateAccount(account string) error
}

// Stream pairs a source with the normalizer for its records.
type Stream struct {
	Source     LedgerSource
	Normalizer Normalizer
}

// NormalizerFunc adapts a plain function to the Normalizer interface.
type NormalizerFunc func(raw json.RawMessage) (model.Transaction, error)

func (f NormalizerFunc) Normalize(raw json.RawMessage) (model.Transaction, error) {
	return f(raw)
}
