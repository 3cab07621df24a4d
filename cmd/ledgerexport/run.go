package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/emperorhan/chain-ledger-export/internal/alert"
	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
	"github.com/emperorhan/chain-ledger-export/internal/config"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/export"
	"github.com/emperorhan/chain-ledger-export/internal/metrics"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/fetcher"
	"github.com/emperorhan/chain-ledger-export/internal/tracing"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "chain-ledger-export"

func runExport(ctx context.Context, ch model.Chain, account string, opts exportOptions, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := uuid.NewString()
	logger, closeLog := newLogger(cfg.Log, stderr)
	defer closeLog()
	logger = logger.With("run_id", runID)

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		RunID:       runID,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()
	defer func() {
		if err := metrics.Push(context.WithoutCancel(ctx), cfg.Metrics.PushgatewayURL, serviceName, runID); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}()

	// Local input is checked before any network call.
	cutoff, err := opts.cutoff()
	if err != nil {
		return err
	}
	known, err := loadKnown(opts.knownPath)
	if err != nil {
		return err
	}

	ec := cfg.Explorers[ch]
	exporter, err := pipeline.DefaultRegistry().Build(explorer.Config{
		Chain:        ch,
		BaseURL:      ec.BaseURL,
		APIKey:       ec.APIKey,
		APIKeyParam:  ec.APIKeyParam,
		APIKeyHeader: ec.APIKeyHeader,
		Timeout:      ec.Timeout,
		RPS:          ec.RPS,
		Burst:        ec.Burst,
		MaxAttempts:  ec.MaxAttempts,
	}, logger)
	if err != nil {
		return err
	}

	fetchOpts := []fetcher.Option{fetcher.WithMaxPages(cfg.Export.MaxPages)}
	if cfg.Export.PageOverlap >= 0 {
		fetchOpts = append(fetchOpts, fetcher.WithOverlap(cfg.Export.PageOverlap))
	}
	alerter := alert.New(cfg.Alert.SlackWebhookURL, cfg.Alert.WebhookURL, cfg.Alert.Cooldown, logger)

	p, err := pipeline.New(ch, exporter, fetcher.New(logger, fetchOpts...), alerter, logger)
	if err != nil {
		return err
	}

	pageSize := opts.pageSize
	if pageSize <= 0 {
		pageSize = cfg.PageSize(ch)
	}
	res, err := p.Run(ctx, pipeline.Job{
		Account:       account,
		Cutoff:        cutoff,
		PageSize:      pageSize,
		RewardSenders: slices.Concat(cfg.RewardSenders[ch], opts.rewardSenders),
		Known:         known,
		Reconcile:     opts.reconcile,
	})
	if err != nil {
		return err
	}

	path := opts.outputPath(ch, account)
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return export.WriteCSV(w, res.Rows)
	}); err != nil {
		return err
	}

	printSummary(stdout, ch, account, path, res)
	return nil
}

func loadKnown(path string) ([]model.Patch, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open known transactions: %w", err)
	}
	defer f.Close()

	patches, err := export.LoadKnownTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return patches, nil
}

// writeFileAtomic writes through a temporary file in the target directory so
// a failed export never leaves a truncated CSV behind.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// newLogger builds the JSON logger. Logs go to stderr, and also to a rotated
// file when a path is configured; stdout is reserved for the summary.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, func()) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	w := stderr
	closeFn := func() {}
	if cfg.FilePath != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(stderr, file)
		closeFn = func() { _ = file.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return logger.With("service", serviceName), closeFn
}

func printSummary(w io.Writer, ch model.Chain, account, path string, res *pipeline.Result) {
	stmt, bal := res.Statement, res.Balance
	cur := ch.Currency()

	fmt.Fprintf(w, "%s export of %s\n", ch.DisplayName(), account)
	fmt.Fprintf(w, "  rows written:   %d (%s)\n", len(res.Rows), path)
	fmt.Fprintf(w, "  overrides:      %d\n", res.Overrides)
	fmt.Fprintf(w, "  incoming:       %d\n", len(stmt.Incoming))
	fmt.Fprintf(w, "  outgoing:       %d\n", len(stmt.Outgoing))
	fmt.Fprintf(w, "  fee incurring:  %d\n", len(stmt.FeeIncurring))
	fmt.Fprintf(w, "  rewards:        %d\n", len(stmt.Reward))
	fmt.Fprintf(w, "  close:          %d\n", len(stmt.Close))
	if n := len(stmt.Duplicates); n > 0 {
		fmt.Fprintf(w, "  duplicates:     %d suppressed\n", n)
	}
	fmt.Fprintf(w, "Balance (%s)\n", cur)
	fmt.Fprintf(w, "  incoming: %s\n", bal.Incoming)
	fmt.Fprintf(w, "  rewards:  %s\n", bal.Rewards)
	fmt.Fprintf(w, "  close:    %s\n", bal.Close)
	fmt.Fprintf(w, "  outgoing: %s\n", bal.Outgoing)
	fmt.Fprintf(w, "  fees:     %s\n", bal.Fees)
	fmt.Fprintf(w, "  net:      %s\n", bal.Net)

	if r := res.Reconciliation; r != nil {
		if r.IsMatch {
			fmt.Fprintf(w, "Reconciliation: match (explorer reports %s %s)\n", r.Reported, cur)
		} else {
			fmt.Fprintf(w, "Reconciliation: MISMATCH (explorer reports %s %s, difference %s)\n", r.Reported, cur, r.Difference)
		}
	}
}
