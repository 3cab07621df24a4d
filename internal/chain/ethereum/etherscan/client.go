package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
)

// Action selects the account history listed by ListTransactions.
type Action string

const (
	ActionTxList         Action = "txlist"
	ActionTxListInternal Action = "txlistinternal"
)

// MaxPageSize is the largest offset Etherscan accepts per page.
const MaxPageSize = 10000

type API interface {
	ListTransactions(ctx context.Context, action Action, address string, page, size int) ([]json.RawMessage, error)
	GetBalance(ctx context.Context, address string) (string, error)
}

type Client struct {
	transport *explorer.Client
}

var _ API = (*Client)(nil)

func NewClient(transport *explorer.Client) *Client {
	return &Client{transport: transport}
}

// ListTransactions returns one page of the account history in ascending
// block order. Raw records are returned untouched for the normalizer.
func (c *Client) ListTransactions(ctx context.Context, action Action, address string, page, size int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", string(action))
	query.Set("address", address)
	query.Set("startblock", "0")
	query.Set("endblock", "99999999")
	query.Set("page", strconv.Itoa(page))
	query.Set("offset", strconv.Itoa(size))
	query.Set("sort", "asc")

	var resp Response
	if err := c.transport.GetJSON(ctx, "", query, &resp); err != nil {
		return nil, fmt.Errorf("%s %s page %d: %w", action, address, page, err)
	}
	if resp.IsEmpty() {
		return []json.RawMessage{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(resp.Result, &records); err != nil {
		return nil, fmt.Errorf("%s %s page %d: decode result: %w", action, address, page, err)
	}
	return records, nil
}

// GetBalance returns the current balance of address in wei.
func (c *Client) GetBalance(ctx context.Context, address string) (string, error) {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "balance")
	query.Set("address", address)
	query.Set("tag", "latest")

	var resp Response
	if err := c.transport.GetJSON(ctx, "", query, &resp); err != nil {
		return "", fmt.Errorf("balance %s: %w", address, err)
	}
	var wei string
	if err := json.Unmarshal(resp.Result, &wei); err != nil {
		return "", fmt.Errorf("balance %s: decode result: %w", address, err)
	}
	return wei, nil
}
