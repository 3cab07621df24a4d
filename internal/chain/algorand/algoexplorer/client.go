package algoexplorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
)

type API interface {
	ListTransactions(ctx context.Context, address string, from, to int) ([]json.RawMessage, error)
	GetAccount(ctx context.Context, address string) (*Account, error)
}

type Client struct {
	transport *explorer.Client
}

var _ API = (*Client)(nil)

func NewClient(transport *explorer.Client) *Client {
	return &Client{transport: transport}
}

// ListTransactions returns the account's transactions with index in
// [from, to) of the explorer's ordering.
func (c *Client) ListTransactions(ctx context.Context, address string, from, to int) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/v1/account/%s/transactions/from/%s/to/%s",
		url.PathEscape(address), strconv.Itoa(from), strconv.Itoa(to))

	var list TransactionList
	if err := c.transport.GetJSON(ctx, path, nil, &list); err != nil {
		return nil, fmt.Errorf("transactions of %s [%d,%d): %w", address, from, to, err)
	}
	if list.Transactions == nil {
		return []json.RawMessage{}, nil
	}
	return list.Transactions, nil
}

func (c *Client) GetAccount(ctx context.Context, address string) (*Account, error) {
	var account Account
	if err := c.transport.GetJSON(ctx, "/v1/account/"+url.PathEscape(address), nil, &account); err != nil {
		return nil, fmt.Errorf("account %s: %w", address, err)
	}
	return &account, nil
}
