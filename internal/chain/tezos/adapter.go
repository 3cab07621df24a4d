package tezos

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/tezos/tzkt"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

const mutezDecimals = 6

// Adapter exposes TzKT as one ledger stream per operation type.
type Adapter struct {
	api    tzkt.API
	logger *slog.Logger
}

var _ chain.Exporter = (*Adapter)(nil)

func NewAdapter(api tzkt.API, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		api:    api,
		logger: logger.With("chain", model.ChainTezos.String()),
	}
}

func (a *Adapter) Streams() []chain.Stream {
	types := []tzkt.OperationType{
		tzkt.Transactions,
		tzkt.Reveals,
		tzkt.Delegations,
		tzkt.Originations,
		tzkt.Activations,
	}
	streams := make([]chain.Stream, 0, len(types))
	for _, opType := range types {
		streams = append(streams, chain.Stream{
			Source:     &source{api: a.api, opType: opType},
			Normalizer: chain.NormalizerFunc(Normalize),
		})
	}
	return streams
}

func (a *Adapter) ValidateAccount(account string) error {
	return ValidateAddress(account)
}

func (a *Adapter) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if err := ValidateAddress(account); err != nil {
		return decimal.Zero, err
	}
	mutez, err := a.api.GetBalance(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return chain.ParseBaseUnits("balance", mutez, mutezDecimals)
}

type source struct {
	api    tzkt.API
	opType tzkt.OperationType
}

func (s *source) Chain() model.Chain {
	return model.ChainTezos
}

func (s *source) Stream() string {
	return s.opType.Path
}

func (s *source) FetchPage(ctx context.Context, account string, limit, offset int) ([]json.RawMessage, error) {
	if err := ValidateAddress(account); err != nil {
		return nil, err
	}
	return s.api.ListOperations(ctx, s.opType, account, limit, offset)
}
