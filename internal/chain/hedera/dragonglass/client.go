package dragonglass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
)

type API interface {
	ListTransactions(ctx context.Context, accountID string, size, from int) ([]json.RawMessage, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
}

type Client struct {
	transport *explorer.Client
}

var _ API = (*Client)(nil)

func NewClient(transport *explorer.Client) *Client {
	return &Client{transport: transport}
}

func (c *Client) ListTransactions(ctx context.Context, accountID string, size, from int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("size", strconv.Itoa(size))
	query.Set("from", strconv.Itoa(from))

	var page TransactionPage
	if err := c.transport.GetJSON(ctx, "/api/accounts/"+url.PathEscape(accountID)+"/transactions", query, &page); err != nil {
		return nil, fmt.Errorf("transactions of %s from %d: %w", accountID, from, err)
	}
	if page.Data == nil {
		return []json.RawMessage{}, nil
	}
	return page.Data, nil
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var account Account
	if err := c.transport.GetJSON(ctx, "/api/accounts/"+url.PathEscape(accountID), nil, &account); err != nil {
		return nil, fmt.Errorf("account %s: %w", accountID, err)
	}
	return &account, nil
}
