package dragonglass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, handler func(*http.Request) string) *Client {
	t.Helper()
	transport, err := explorer.New(explorer.Config{
		Chain:        model.ChainHedera,
		BaseURL:      "https://api.dragonglass.local",
		APIKey:       "key",
		APIKeyHeader: "X-API-KEY",
	}, slog.Default(),
		explorer.WithHTTPClient(&http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(handler(r))),
				Header:     make(http.Header),
			}, nil
		})}),
	)
	require.NoError(t, err)
	return NewClient(transport)
}

func TestListTransactions(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) string {
		assert.Equal(t, "/api/accounts/0.0.1234/transactions", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("size"))
		assert.Equal(t, "75", r.URL.Query().Get("from"))
		assert.Equal(t, "key", r.Header.Get("X-API-KEY"))
		return `{"totalCount":2,"size":25,"data":[{"transactionID":"a"},{"transactionID":"b"}]}`
	})

	records, err := c.ListTransactions(context.Background(), "0.0.1234", 25, 75)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListTransactions_EmptyData(t *testing.T) {
	c := newTestClient(t, func(*http.Request) string { return `{"totalCount":0}` })

	records, err := c.ListTransactions(context.Background(), "0.0.1234", 25, 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGetAccount(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) string {
		assert.Equal(t, "/api/accounts/0.0.1234", r.URL.Path)
		return `{"accountID":"0.0.1234","balance":150000000}`
	})

	account, err := c.GetAccount(context.Background(), "0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, int64(150000000), account.Balance)
}
