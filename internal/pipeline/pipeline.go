package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/alert"
	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/export"
	"github.com/emperorhan/chain-ledger-export/internal/metrics"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/classifier"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/fetcher"
	"github.com/emperorhan/chain-ledger-export/internal/reconciliation"
	"github.com/emperorhan/chain-ledger-export/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Job describes one export of one account.
type Job struct {
	Account  string
	Cutoff   model.Cutoff
	PageSize int

	// RewardSenders extends the chain's reward-sender set for this run.
	RewardSenders []string

	// Known holds manual corrections applied to the generated rows.
	Known []model.Patch

	// Reconcile compares the derived balance with the explorer's. It is
	// skipped when Cutoff excludes part of the history.
	Reconcile bool
}

type Result struct {
	Statement      model.Statement
	Balance        model.Balance
	Rows           []model.Row
	Reconciliation *reconciliation.SnapshotResult
	Overrides      int
	Duration       time.Duration
}

// Pipeline runs fetch, classify, balance, rows and overrides for one chain.
// It holds no state between runs.
type Pipeline struct {
	chain      model.Chain
	exporter   chain.Exporter
	fetcher    *fetcher.Fetcher
	classifier *classifier.Classifier
	reconciler *reconciliation.Service
	alerter    alert.Alerter
	logger     *slog.Logger
}

func New(
	ch model.Chain,
	exporter chain.Exporter,
	f *fetcher.Fetcher,
	alerter alert.Alerter,
	logger *slog.Logger,
) (*Pipeline, error) {
	rules, err := classifier.RulesFor(ch)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = &alert.NoopAlerter{}
	}
	if f == nil {
		f = fetcher.New(logger)
	}
	return &Pipeline{
		chain:      ch,
		exporter:   exporter,
		fetcher:    f,
		classifier: classifier.New(rules, logger),
		reconciler: reconciliation.NewService(exporter, alerter, logger),
		alerter:    alerter,
		logger:     logger.With("component", "pipeline", "chain", ch.String()),
	}, nil
}

// Run executes job. Any failure aborts the whole export and is reported
// through the alerter; no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, job Job) (res *Result, err error) {
	start := time.Now()
	ctx, span := tracing.Tracer("pipeline").Start(ctx, "pipeline.run")
	span.SetAttributes(
		attribute.String("chain", p.chain.String()),
		attribute.String("account", job.Account),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
			p.notifyFailure(ctx, job, err)
		}
		metrics.ExportRuns.WithLabelValues(p.chain.String(), status).Inc()
		tracing.End(span, err)
	}()

	if err := p.exporter.ValidateAccount(job.Account); err != nil {
		return nil, fmt.Errorf("invalid %s account %q: %w", p.chain, job.Account, err)
	}

	txs, err := p.fetcher.FetchStreams(ctx, job.Account, job.PageSize, job.Cutoff, p.exporter.Streams()...)
	if err != nil {
		return nil, err
	}

	stmt := p.classifier.Classify(txs, job.Account, classifier.Auxiliary{RewardSenders: job.RewardSenders})
	balance := reconciliation.Calculate(stmt)

	var snapshot *reconciliation.SnapshotResult
	switch {
	case job.Reconcile && job.Cutoff.IsZero():
		snapshot, err = p.reconciler.Reconcile(ctx, p.chain, job.Account, balance)
		if err != nil {
			return nil, err
		}
	case job.Reconcile:
		p.logger.Info("skipping reconciliation of a partial history", "account", job.Account)
	}

	rows, applied := export.ApplyOverrides(export.BuildRows(stmt), job.Known)
	metrics.ExportRowsWritten.WithLabelValues(p.chain.String()).Add(float64(len(rows)))
	metrics.ExportOverridesApplied.WithLabelValues(p.chain.String()).Add(float64(applied))

	res = &Result{
		Statement:      stmt,
		Balance:        balance,
		Rows:           rows,
		Reconciliation: snapshot,
		Overrides:      applied,
		Duration:       time.Since(start),
	}
	p.logger.Info("export completed",
		"account", job.Account,
		"transactions", len(txs),
		"rows", len(rows),
		"overrides", applied,
		"duplicates", len(stmt.Duplicates),
		"net", balance.Net.String(),
		"duration", res.Duration,
	)
	return res, nil
}

func (p *Pipeline) notifyFailure(ctx context.Context, job Job, runErr error) {
	p.logger.Error("export failed", "account", job.Account, "error", runErr)
	if err := p.alerter.Send(context.WithoutCancel(ctx), alert.Alert{
		Type:    alert.AlertTypeExportFailed,
		Chain:   p.chain.String(),
		Account: job.Account,
		Title:   "Export failed",
		Message: runErr.Error(),
	}); err != nil {
		p.logger.Warn("failure alert not delivered", "error", err)
	}
}
