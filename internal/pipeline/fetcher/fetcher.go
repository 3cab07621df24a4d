package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/metrics"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/identity"
	"github.com/emperorhan/chain-ledger-export/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrMaxPagesExceeded is returned when a provider keeps returning full pages
// past the configured page bound.
var ErrMaxPagesExceeded = errors.New("max pages exceeded")

const defaultOverlap = -1

// Fetcher walks a LedgerSource to exhaustion and returns the de-duplicated,
// cutoff-filtered transaction list.
//
// Pages are requested with overlapping offsets: the offset advances by
// pageSize-overlap so that a record shifted across a page boundary by a
// concurrent insertion is still observed. The resulting duplicates collapse
// on the canonical transaction identifier. The first version of a record
// seen wins when overlapping pages disagree on its fields.
type Fetcher struct {
	logger   *slog.Logger
	overlap  int
	maxPages int
}

type Option func(*Fetcher)

// WithOverlap sets how many records consecutive pages share. Values outside
// [0, pageSize-1] are clamped per call. The default is half a page.
func WithOverlap(n int) Option {
	return func(f *Fetcher) {
		f.overlap = n
	}
}

// WithMaxPages bounds the number of pages fetched per stream; zero means
// unbounded. Exceeding the bound fails the fetch rather than truncating it.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

func New(logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		logger:  logger.With("component", "fetcher"),
		overlap: defaultOverlap,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// FetchAll returns every record of source for account admitted by cutoff,
// newest first. Any source, decoding or invariant error aborts the whole
// fetch; no partial result is returned.
func (f *Fetcher) FetchAll(
	ctx context.Context,
	source chain.LedgerSource,
	normalizer chain.Normalizer,
	account string,
	pageSize int,
	cutoff model.Cutoff,
) ([]model.Transaction, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	chainID := source.Chain()
	stream := source.Stream()
	chainLabel := chainID.String()
	log := f.logger.With("chain", chainLabel, "stream", stream, "account", account)

	spanCtx, span := tracing.Tracer("fetcher").Start(ctx, "fetcher.fetchAll",
		otelTrace.WithAttributes(
			attribute.String("chain", chainLabel),
			attribute.String("stream", stream),
			attribute.Int("page_size", pageSize),
		),
	)
	start := time.Now()

	txs, stats, err := f.walk(spanCtx, source, normalizer, account, pageSize, cutoff)
	metrics.FetcherLatency.WithLabelValues(chainLabel, stream).Observe(time.Since(start).Seconds())
	tracing.End(span, err)
	if err != nil {
		metrics.FetcherErrors.WithLabelValues(chainLabel, stream).Inc()
		log.Error("fetch failed", "pages", stats.pages, "error", err)
		return nil, err
	}

	log.Info("fetch completed",
		"pages", stats.pages,
		"records", stats.records,
		"transactions", len(txs),
		"overlap_duplicates", stats.duplicates,
		"before_cutoff", stats.beforeCutoff,
	)
	return txs, nil
}

type walkStats struct {
	pages        int
	records      int
	duplicates   int
	beforeCutoff int
}

func (f *Fetcher) walk(
	ctx context.Context,
	source chain.LedgerSource,
	normalizer chain.Normalizer,
	account string,
	pageSize int,
	cutoff model.Cutoff,
) ([]model.Transaction, walkStats, error) {
	chainID := source.Chain()
	chainLabel, stream := chainID.String(), source.Stream()
	step := pageSize - f.effectiveOverlap(pageSize)

	var stats walkStats
	seen := make(map[string]struct{})
	var acc []model.Transaction

	for offset := 0; ; offset += step {
		if f.maxPages > 0 && stats.pages >= f.maxPages {
			return nil, stats, fmt.Errorf("%s %s: %w (%d pages of %d)", chainLabel, stream, ErrMaxPagesExceeded, f.maxPages, pageSize)
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		page, err := source.FetchPage(ctx, account, pageSize, offset)
		if err != nil {
			return nil, stats, fmt.Errorf("fetch %s %s page at offset %d: %w", chainLabel, stream, offset, err)
		}
		stats.pages++
		stats.records += len(page)
		metrics.FetcherPagesFetched.WithLabelValues(chainLabel, stream).Inc()
		metrics.FetcherRecordsFetched.WithLabelValues(chainLabel, stream).Add(float64(len(page)))

		for i, raw := range page {
			tx, err := normalizer.Normalize(raw)
			if err != nil {
				return nil, stats, fmt.Errorf("normalize %s %s record %d: %w", chainLabel, stream, offset+i, err)
			}
			if err := tx.Validate(); err != nil {
				return nil, stats, fmt.Errorf("normalize %s %s record %d: %w", chainLabel, stream, offset+i, err)
			}
			// Records before the cutoff are dropped but never end the walk:
			// provider ordering is not trusted.
			if !cutoff.Admits(tx) {
				stats.beforeCutoff++
				continue
			}
			key := identity.CanonicalTxIdentity(chainID, tx.ID)
			if _, ok := seen[key]; ok {
				stats.duplicates++
				continue
			}
			seen[key] = struct{}{}
			acc = append(acc, tx)
		}

		if len(page) < pageSize {
			break
		}
	}

	metrics.FetcherOverlapDuplicates.WithLabelValues(chainLabel, stream).Add(float64(stats.duplicates))
	metrics.FetcherRecordsBeforeCutoff.WithLabelValues(chainLabel, stream).Add(float64(stats.beforeCutoff))

	slices.SortFunc(acc, model.NewestFirst)
	return acc, stats, nil
}

func (f *Fetcher) effectiveOverlap(pageSize int) int {
	overlap := f.overlap
	if overlap < 0 {
		overlap = pageSize / 2
	}
	if overlap > pageSize-1 {
		overlap = pageSize - 1
	}
	return overlap
}

// FetchStreams fetches independent streams of one account concurrently. The
// first failure cancels the remaining streams and fails the call. Results
// are concatenated in stream order, each stream newest first.
func (f *Fetcher) FetchStreams(
	ctx context.Context,
	account string,
	pageSize int,
	cutoff model.Cutoff,
	streams ...chain.Stream,
) ([]model.Transaction, error) {
	results := make([][]model.Transaction, len(streams))

	g, gCtx := errgroup.WithContext(ctx)
	for i, s := range streams {
		g.Go(func() error {
			txs, err := f.FetchAll(gCtx, s.Source, s.Normalizer, account, pageSize, cutoff)
			if err != nil {
				return err
			}
			results[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	out := make([]model.Transaction, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
