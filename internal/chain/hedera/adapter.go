package hedera

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/hedera/dragonglass"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	StreamTransactions = "transactions"

	tinybarDecimals = 8
)

type Adapter struct {
	api    dragonglass.API
	logger *slog.Logger
}

var (
	_ chain.LedgerSource = (*Adapter)(nil)
	_ chain.Exporter     = (*Adapter)(nil)
)

func NewAdapter(api dragonglass.API, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		api:    api,
		logger: logger.With("chain", model.ChainHedera.String()),
	}
}

func (a *Adapter) Streams() []chain.Stream {
	return []chain.Stream{{Source: a, Normalizer: chain.NormalizerFunc(Normalize)}}
}

func (a *Adapter) Chain() model.Chain {
	return model.ChainHedera
}

func (a *Adapter) Stream() string {
	return StreamTransactions
}

func (a *Adapter) FetchPage(ctx context.Context, account string, limit, offset int) ([]json.RawMessage, error) {
	if err := ValidateAccountID(account); err != nil {
		return nil, err
	}
	return a.api.ListTransactions(ctx, account, limit, offset)
}

func (a *Adapter) ValidateAccount(account string) error {
	return ValidateAccountID(account)
}

func (a *Adapter) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if err := ValidateAccountID(account); err != nil {
		return decimal.Zero, err
	}
	info, err := a.api.GetAccount(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return chain.ParseBaseUnits("balance", strconv.FormatInt(info.Balance, 10), tinybarDecimals)
}
