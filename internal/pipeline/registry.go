package pipeline

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/algorand"
	"github.com/emperorhan/chain-ledger-export/internal/chain/algorand/algoexplorer"
	"github.com/emperorhan/chain-ledger-export/internal/chain/ethereum"
	"github.com/emperorhan/chain-ledger-export/internal/chain/ethereum/etherscan"
	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
	"github.com/emperorhan/chain-ledger-export/internal/chain/hedera"
	"github.com/emperorhan/chain-ledger-export/internal/chain/hedera/dragonglass"
	"github.com/emperorhan/chain-ledger-export/internal/chain/subscan"
	"github.com/emperorhan/chain-ledger-export/internal/chain/subscan/api"
	"github.com/emperorhan/chain-ledger-export/internal/chain/tezos"
	"github.com/emperorhan/chain-ledger-export/internal/chain/tezos/tzkt"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
)

// Factory builds the exporter of one chain on top of an explorer transport.
type Factory func(transport *explorer.Client, logger *slog.Logger) (chain.Exporter, error)

// Registry maps chains to the factories that build their exporters.
type Registry struct {
	mu        sync.RWMutex
	factories map[model.Chain]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[model.Chain]Factory)}
}

// DefaultRegistry knows every supported chain.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(model.ChainEthereum, func(t *explorer.Client, logger *slog.Logger) (chain.Exporter, error) {
		return ethereum.NewAdapter(etherscan.NewClient(t), logger), nil
	})
	r.Register(model.ChainTezos, func(t *explorer.Client, logger *slog.Logger) (chain.Exporter, error) {
		return tezos.NewAdapter(tzkt.NewClient(t), logger), nil
	})
	r.Register(model.ChainAlgorand, func(t *explorer.Client, logger *slog.Logger) (chain.Exporter, error) {
		return algorand.NewAdapter(algoexplorer.NewClient(t), logger), nil
	})
	r.Register(model.ChainHedera, func(t *explorer.Client, logger *slog.Logger) (chain.Exporter, error) {
		return hedera.NewAdapter(dragonglass.NewClient(t), logger), nil
	})
	for _, ch := range []model.Chain{model.ChainPolkadot, model.ChainKusama} {
		r.Register(ch, func(t *explorer.Client, logger *slog.Logger) (chain.Exporter, error) {
			network, err := subscan.NetworkFor(ch)
			if err != nil {
				return nil, err
			}
			return subscan.NewAdapter(api.NewClient(t), network, logger), nil
		})
	}
	return r
}

// Register adds or replaces the factory of a chain.
func (r *Registry) Register(ch model.Chain, f Factory) {
	r.mu.Lock()
	r.factories[ch] = f
	r.mu.Unlock()
}

// Chains lists the registered chains in a stable order.
func (r *Registry) Chains() []model.Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Chain, 0, len(r.factories))
	for ch := range r.factories {
		out = append(out, ch)
	}
	slices.Sort(out)
	return out
}

// Build creates the explorer transport described by cfg and the exporter of
// cfg.Chain on top of it.
func (r *Registry) Build(cfg explorer.Config, logger *slog.Logger, opts ...explorer.Option) (chain.Exporter, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Chain]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no exporter registered for chain %q", cfg.Chain)
	}

	transport, err := explorer.New(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return f(transport, logger)
}
