package tzkt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
)

// OperationType selects a TzKT per-type operation endpoint and the query
// parameter that binds it to an account.
type OperationType struct {
	Path         string
	AccountParam string
}

var (
	Transactions = OperationType{Path: "transactions", AccountParam: "anyof.sender.target"}
	Reveals      = OperationType{Path: "reveals", AccountParam: "sender"}
	Delegations  = OperationType{Path: "delegations", AccountParam: "sender"}
	Originations = OperationType{Path: "originations", AccountParam: "sender"}
	Activations  = OperationType{Path: "activations", AccountParam: "account"}
)

// MaxLimit is the largest page TzKT serves.
const MaxLimit = 10000

type API interface {
	ListOperations(ctx context.Context, opType OperationType, address string, limit, offset int) ([]json.RawMessage, error)
	GetBalance(ctx context.Context, address string) (string, error)
}

type Client struct {
	transport *explorer.Client
}

var _ API = (*Client)(nil)

func NewClient(transport *explorer.Client) *Client {
	return &Client{transport: transport}
}

// ListOperations lists operations of one type touching address, oldest first.
func (c *Client) ListOperations(ctx context.Context, opType OperationType, address string, limit, offset int) ([]json.RawMessage, error) {
	if limit > MaxLimit {
		return nil, fmt.Errorf("tzkt limit %d exceeds %d", limit, MaxLimit)
	}
	query := url.Values{}
	query.Set(opType.AccountParam, address)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("sort.asc", "id")

	var records []json.RawMessage
	if err := c.transport.GetJSON(ctx, "/v1/operations/"+opType.Path, query, &records); err != nil {
		return nil, fmt.Errorf("%s of %s at offset %d: %w", opType.Path, address, offset, err)
	}
	return records, nil
}

// GetBalance returns the current balance of address in mutez.
func (c *Client) GetBalance(ctx context.Context, address string) (string, error) {
	var balance json.Number
	if err := c.transport.GetJSON(ctx, "/v1/accounts/"+url.PathEscape(address)+"/balance", nil, &balance); err != nil {
		return "", fmt.Errorf("balance %s: %w", address, err)
	}
	return balance.String(), nil
}
