package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(5.0, 2, "ethereum")

	require.NotNil(t, l)
	require.NotNil(t, l.limiter)
	assert.Equal(t, "ethereum", l.chain)
	assert.InDelta(t, 5.0, float64(l.limiter.Limit()), 0.001)
	assert.Equal(t, 2, l.limiter.Burst())
}

func TestNewLimiter_NonPositiveRPSDisablesLimit(t *testing.T) {
	l := NewLimiter(0, 0, "tezos")
	assert.Equal(t, rate.Inf, l.limiter.Limit())
	assert.Equal(t, 1, l.limiter.Burst())
}

func TestLimiter_NilIsNoop(t *testing.T) {
	var l *Limiter
	require.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_AllowWithinBurst(t *testing.T) {
	const burst = 5
	l := NewLimiter(100, burst, "polkadot")

	ctx := context.Background()

	for i := 0; i < burst; i++ {
		start := time.Now()
		err := l.Wait(ctx)
		elapsed := time.Since(start)

		require.NoError(t, err, "request %d should not error", i)
		assert.Less(t, elapsed, 50*time.Millisecond,
			"request %d should complete immediately, took %v", i, elapsed)
	}
}

func TestLimiter_WaitWhenExhausted(t *testing.T) {
	const (
		rps   = 10.0 // 1 token every 100ms
		burst = 1
	)
	l := NewLimiter(rps, burst, "ethereum")

	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	err := l.Wait(ctx)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond,
		"should have waited for a token, but only took %v", elapsed)
}

func TestLimiter_ContextCancellation(t *testing.T) {
	l := NewLimiter(1.0, 1, "kusama")

	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassifyCallError(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "ok"},
		{errors.New("context deadline exceeded"), "timeout"},
		{errors.New("http status 429: Too Many Requests"), "rate_limited"},
		{errors.New("http status 503: unavailable"), "server_error"},
		{errors.New("dial tcp: connection refused"), "network_error"},
		{errors.New("decode response: invalid character"), "decode_error"},
		{errors.New("http status 404: not found"), "client_error"},
	}
	for _, tc := range tests {
		name := tc.expected
		if tc.err != nil {
			name = tc.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyCallError(tc.err))
		})
	}
}
