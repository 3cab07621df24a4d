package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/ratelimit"
	"github.com/emperorhan/chain-ledger-export/internal/circuitbreaker"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/metrics"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/retry"
	"github.com/emperorhan/chain-ledger-export/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultMaxAttempts    = 3
	defaultBackoffInitial = 500 * time.Millisecond
	defaultBackoffMax     = 5 * time.Second
	maxErrorBodyBytes     = 512
)

// Config describes one explorer API. The API key is injected here and never
// seen by the chain packages; exactly one of APIKeyParam or APIKeyHeader
// selects where it goes.
type Config struct {
	Chain        model.Chain
	BaseURL      string
	APIKey       string
	APIKeyParam  string
	APIKeyHeader string

	Timeout        time.Duration
	RPS            float64
	Burst          int
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Client is the HTTP JSON transport shared by every chain explorer client.
// Transient failures (429, 5xx, timeouts) are retried here with exponential
// backoff; everything above this layer treats an error as terminal.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cfg        Config
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.Breaker
	logger     *slog.Logger
	sleepFn    func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests use a stub
// RoundTripper).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleepFn = fn
	}
}

func New(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid %s explorer base url %q", cfg.Chain, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = defaultBackoffInitial
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		cfg.BackoffMax = defaultBackoffMax
	}
	if logger == nil {
		logger = slog.Default()
	}

	chainLabel := cfg.Chain.String()
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		cfg:        cfg,
		limiter:    ratelimit.NewLimiter(cfg.RPS, cfg.Burst, chainLabel),
		logger:     logger.With("component", "explorer", "chain", chainLabel, "host", base.Host),
	}
	c.breaker = circuitbreaker.New(circuitbreaker.Config{
		Name: chainLabel + " explorer",
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.ExplorerCircuitState.WithLabelValues(chainLabel).Set(float64(to))
			c.logger.Warn("explorer circuit state changed", "from", from.String(), "to", to.String())
		},
	})
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// GetJSON issues a GET for path with query and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues a POST with a JSON-encoded body and decodes the response.
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	endpoint := c.resolve(path, query)
	redacted := c.redact(endpoint)

	spanCtx, span := tracing.Tracer("explorer").Start(ctx, "explorer.call",
		otelTrace.WithAttributes(
			attribute.String("chain", c.cfg.Chain.String()),
			attribute.String("http.method", method),
			attribute.String("url.path", path),
		),
	)

	var lastErr error
	lastDecision := retry.Decision{Class: retry.ClassTerminal, Reason: "unset"}
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.breaker.Allow(); err != nil {
			tracing.End(span, err)
			return fmt.Errorf("%s %s: %w", method, redacted, err)
		}

		start := time.Now()
		err := c.attempt(spanCtx, method, endpoint, payload, out)
		metrics.ExplorerCallLatency.WithLabelValues(c.cfg.Chain.String(), path).Observe(time.Since(start).Seconds())
		ratelimit.RecordCall(c.cfg.Chain.String(), path, err)

		if err == nil {
			c.breaker.Record(nil, false)
			tracing.End(span, nil)
			return nil
		}
		lastErr = err
		lastDecision = retry.Classify(err)
		c.breaker.Record(err, lastDecision.IsTransient())

		if ctx.Err() != nil {
			tracing.End(span, ctx.Err())
			return fmt.Errorf("%s %s: %w", method, redacted, ctx.Err())
		}
		if !lastDecision.IsTransient() || attempt == c.cfg.MaxAttempts {
			break
		}

		metrics.ExplorerRetries.WithLabelValues(c.cfg.Chain.String(), lastDecision.Reason).Inc()
		c.logger.Warn("explorer call failed; retrying",
			"url", redacted,
			"attempt", attempt,
			"classification_reason", lastDecision.Reason,
			"error", err,
		)
		if sleepErr := c.sleep(ctx, c.retryDelay(attempt)); sleepErr != nil {
			tracing.End(span, sleepErr)
			return fmt.Errorf("%s %s: %w", method, redacted, sleepErr)
		}
	}

	err := fmt.Errorf("%s %s (reason=%s): %w", method, redacted, lastDecision.Reason, lastErr)
	tracing.End(span, err)
	return err
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKeyHeader != "" && c.cfg.APIKey != "" {
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full request URL, query key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.redact(urlErr.URL)
		}
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &chain.DecodeError{Field: "response body", Value: truncate(string(respBody)), Err: err}
	}
	if checker, ok := out.(ResponseChecker); ok {
		return checker.CheckResponse()
	}
	return nil
}

// ResponseChecker is implemented by response envelopes that report failures
// inside a 200 body (Etherscan's status "0"). The returned error is classified
// and retried like any transport failure.
type ResponseChecker interface {
	CheckResponse() error
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	if p := strings.TrimLeft(path, "/"); p != "" {
		u.Path = c.baseURL.Path + "/" + p
	}
	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.cfg.APIKeyParam != "" && c.cfg.APIKey != "" {
		q.Set(c.cfg.APIKeyParam, c.cfg.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// redact strips the API key from a URL before it reaches logs or errors.
func (c *Client) redact(endpoint string) string {
	if c.cfg.APIKey == "" {
		return endpoint
	}
	return strings.ReplaceAll(endpoint, url.QueryEscape(c.cfg.APIKey), "REDACTED")
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.cfg.BackoffInitial
	for i := 1; i < attempt; i++ {
		if delay >= c.cfg.BackoffMax/2 {
			return c.cfg.BackoffMax
		}
		delay *= 2
	}
	if delay > c.cfg.BackoffMax {
		return c.cfg.BackoffMax
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if c.sleepFn != nil {
		return c.sleepFn(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTTPError is a non-200 explorer response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

// IsHTTPStatus reports whether err wraps an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}

func truncate(s string) string {
	if len(s) <= maxErrorBodyBytes {
		return s
	}
	return s[:maxErrorBodyBytes] + "..."
}
