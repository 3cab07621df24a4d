package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/alert"
	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/metrics"
	"github.com/shopspring/decimal"
)

// SnapshotResult holds the comparison of a derived balance with the balance
// the explorer reports for the same account.
type SnapshotResult struct {
	Chain      string          `json:"chain"`
	Account    string          `json:"account"`
	Derived    decimal.Decimal `json:"derived"`
	Reported   decimal.Decimal `json:"reported"`
	Difference decimal.Decimal `json:"difference"`
	IsMatch    bool            `json:"is_match"`
	CheckedAt  time.Time       `json:"checked_at"`
}

// Service checks derived balances against explorer-reported balances. It
// only makes sense for exports that cover the full history of an account.
type Service struct {
	querier chain.BalanceQuerier
	alerter alert.Alerter
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(querier chain.BalanceQuerier, alerter alert.Alerter, logger *slog.Logger) *Service {
	if alerter == nil {
		alerter = &alert.NoopAlerter{}
	}
	return &Service{
		querier: querier,
		alerter: alerter,
		logger:  logger.With("component", "reconciliation"),
		now:     time.Now,
	}
}

// Reconcile compares balance.Net with the current balance reported for
// account. A mismatch is reported through the result, a metric and an alert;
// it is not an error. Errors only come from the balance query.
func (s *Service) Reconcile(ctx context.Context, ch model.Chain, account string, balance model.Balance) (*SnapshotResult, error) {
	reported, err := s.querier.GetBalance(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("query %s balance of %s: %w", ch, account, err)
	}

	diff := reported.Sub(balance.Net)
	result := &SnapshotResult{
		Chain:      ch.String(),
		Account:    account,
		Derived:    balance.Net,
		Reported:   reported,
		Difference: diff,
		IsMatch:    diff.IsZero(),
		CheckedAt:  s.now().UTC(),
	}

	if result.IsMatch {
		s.logger.Info("balance reconciled",
			"chain", ch,
			"account", account,
			"balance", reported.String(),
		)
		return result, nil
	}

	metrics.ReconciliationMismatches.WithLabelValues(ch.String()).Inc()
	s.logger.Warn("balance mismatch",
		"chain", ch,
		"account", account,
		"derived", balance.Net.String(),
		"reported", reported.String(),
		"difference", diff.String(),
	)

	if err := s.alerter.Send(ctx, alert.Alert{
		Type:    alert.AlertTypeReconcileMismatch,
		Chain:   ch.String(),
		Account: account,
		Title:   "Balance reconciliation mismatch detected",
		Message: fmt.Sprintf("explorer reports %s %s, export derives %s", reported, ch.Currency(), balance.Net),
		Fields: map[string]string{
			"derived":    balance.Net.String(),
			"reported":   reported.String(),
			"difference": diff.String(),
		},
	}); err != nil {
		s.logger.Warn("mismatch alert failed", "error", err)
	}
	return result, nil
}
