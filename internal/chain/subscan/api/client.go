package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
)

// MaxRow is the largest page Subscan serves.
const MaxRow = 100

type API interface {
	ListTransfers(ctx context.Context, address string, page, row int) ([]json.RawMessage, error)
	ListRewards(ctx context.Context, address string, page, row int) ([]json.RawMessage, error)
	GetBalance(ctx context.Context, address string) (string, error)
}

type Client struct {
	transport *explorer.Client
}

var _ API = (*Client)(nil)

func NewClient(transport *explorer.Client) *Client {
	return &Client{transport: transport}
}

// ListTransfers returns one page of transfers; page is zero-based.
func (c *Client) ListTransfers(ctx context.Context, address string, page, row int) ([]json.RawMessage, error) {
	data, err := c.post(ctx, "/api/scan/transfers", pageRequest{Row: row, Page: page, Address: address})
	if err != nil {
		return nil, fmt.Errorf("transfers of %s page %d: %w", address, page, err)
	}
	var out transfersData
	if err := decodeData(data, &out); err != nil {
		return nil, fmt.Errorf("transfers of %s page %d: %w", address, page, err)
	}
	if out.Transfers == nil {
		return []json.RawMessage{}, nil
	}
	return out.Transfers, nil
}

// ListRewards returns one page of staking rewards; page is zero-based.
func (c *Client) ListRewards(ctx context.Context, address string, page, row int) ([]json.RawMessage, error) {
	req := rewardRequest{pageRequest: pageRequest{Row: row, Page: page, Address: address}, Category: "Reward"}
	data, err := c.post(ctx, "/api/v2/scan/account/reward_slash", req)
	if err != nil {
		return nil, fmt.Errorf("rewards of %s page %d: %w", address, page, err)
	}
	var out rewardsData
	if err := decodeData(data, &out); err != nil {
		return nil, fmt.Errorf("rewards of %s page %d: %w", address, page, err)
	}
	if out.List == nil {
		return []json.RawMessage{}, nil
	}
	return out.List, nil
}

// GetBalance returns the account's balance as reported by Subscan, already in
// the display unit.
func (c *Client) GetBalance(ctx context.Context, address string) (string, error) {
	data, err := c.post(ctx, "/api/v2/scan/search", map[string]string{"key": address})
	if err != nil {
		return "", fmt.Errorf("balance %s: %w", address, err)
	}
	var out accountData
	if err := decodeData(data, &out); err != nil {
		return "", fmt.Errorf("balance %s: %w", address, err)
	}
	return out.Account.Balance, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var env Envelope
	if err := c.transport.PostJSON(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
