package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/ethereum/etherscan"
	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	StreamNormal   = "normal"
	StreamInternal = "internal"

	weiDecimals = 18
)

// Adapter exposes an Etherscan-compatible explorer as two ledger streams:
// normal transactions and internal (contract-initiated) value transfers.
type Adapter struct {
	api    etherscan.API
	logger *slog.Logger
}

var _ chain.Exporter = (*Adapter)(nil)

func NewAdapter(api etherscan.API, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		api:    api,
		logger: logger.With("chain", model.ChainEthereum.String()),
	}
}

// Streams returns the normal stream first; it wins identifier ties against
// internal records of the same transaction.
func (a *Adapter) Streams() []chain.Stream {
	return []chain.Stream{
		{
			Source:     &source{api: a.api, action: etherscan.ActionTxList, stream: StreamNormal},
			Normalizer: chain.NormalizerFunc(NormalizeNormal),
		},
		{
			Source:     &source{api: a.api, action: etherscan.ActionTxListInternal, stream: StreamInternal},
			Normalizer: chain.NormalizerFunc(NormalizeInternal),
		},
	}
}

func (a *Adapter) ValidateAccount(account string) error {
	return ValidateAddress(account)
}

func (a *Adapter) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if err := ValidateAddress(account); err != nil {
		return decimal.Zero, err
	}
	wei, err := a.api.GetBalance(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := chain.ParseBaseUnits("balance", wei, weiDecimals)
	if err != nil {
		return decimal.Zero, err
	}
	a.logger.Debug("fetched explorer balance", "account", account, "balance", balance.String())
	return balance, nil
}

// ValidateAddress rejects anything that is not a 20-byte hex address.
func ValidateAddress(address string) error {
	if !common.IsHexAddress(strings.TrimSpace(address)) {
		return fmt.Errorf("invalid ethereum address %q", address)
	}
	return nil
}

type source struct {
	api    etherscan.API
	action etherscan.Action
	stream string
}

func (s *source) Chain() model.Chain {
	return model.ChainEthereum
}

func (s *source) Stream() string {
	return s.stream
}

func (s *source) FetchPage(ctx context.Context, account string, limit, offset int) ([]json.RawMessage, error) {
	if err := ValidateAddress(account); err != nil {
		return nil, err
	}
	return explorer.FetchWindow(ctx, limit, offset, etherscan.MaxPageSize,
		func(ctx context.Context, page, size int) ([]json.RawMessage, error) {
			return s.api.ListTransactions(ctx, s.action, account, page, size)
		},
	)
}
