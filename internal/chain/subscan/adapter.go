package subscan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
	"github.com/emperorhan/chain-ledger-export/internal/chain/subscan/api"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	StreamTransfers = "transfers"
	StreamRewards   = "rewards"
)

// Network holds the per-relay-chain constants.
type Network struct {
	Chain model.Chain
	// SS58 address prefix.
	Prefix byte
	// Planck exponent used for fees and rewards.
	Decimals int32
}

var (
	Polkadot = Network{Chain: model.ChainPolkadot, Prefix: 0, Decimals: 10}
	Kusama   = Network{Chain: model.ChainKusama, Prefix: 2, Decimals: 12}
)

// NetworkFor returns the constants of a Subscan-served chain.
func NetworkFor(c model.Chain) (Network, error) {
	switch c {
	case model.ChainPolkadot:
		return Polkadot, nil
	case model.ChainKusama:
		return Kusama, nil
	default:
		return Network{}, fmt.Errorf("chain %s is not served by subscan", c)
	}
}

// Adapter exposes Subscan transfers and staking rewards of one network.
type Adapter struct {
	api     api.API
	network Network
	logger  *slog.Logger
}

var _ chain.Exporter = (*Adapter)(nil)

func NewAdapter(client api.API, network Network, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		api:     client,
		network: network,
		logger:  logger.With("chain", network.Chain.String()),
	}
}

func (a *Adapter) Streams() []chain.Stream {
	n := &normalizer{network: a.network}
	return []chain.Stream{
		{
			Source:     &source{adapter: a, stream: StreamTransfers, list: a.api.ListTransfers},
			Normalizer: chain.NormalizerFunc(n.NormalizeTransfer),
		},
		{
			Source:     &source{adapter: a, stream: StreamRewards, list: a.api.ListRewards},
			Normalizer: chain.NormalizerFunc(n.NormalizeReward),
		},
	}
}

func (a *Adapter) ValidateAccount(account string) error {
	return ValidateAddress(account, a.network.Prefix)
}

func (a *Adapter) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if err := ValidateAddress(account, a.network.Prefix); err != nil {
		return decimal.Zero, err
	}
	balance, err := a.api.GetBalance(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return chain.ParseDecimal("balance", balance)
}

type listFunc func(ctx context.Context, address string, page, row int) ([]json.RawMessage, error)

type source struct {
	adapter *Adapter
	stream  string
	list    listFunc
}

func (s *source) Chain() model.Chain {
	return s.adapter.network.Chain
}

func (s *source) Stream() string {
	return s.stream
}

func (s *source) FetchPage(ctx context.Context, account string, limit, offset int) ([]json.RawMessage, error) {
	if err := ValidateAddress(account, s.adapter.network.Prefix); err != nil {
		return nil, err
	}
	return explorer.FetchWindow(ctx, limit, offset, api.MaxRow,
		func(ctx context.Context, page, size int) ([]json.RawMessage, error) {
			return s.list(ctx, account, page-1, size)
		},
	)
}
