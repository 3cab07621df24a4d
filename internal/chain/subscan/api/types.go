package api

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps every Subscan response; Code is non-zero on failure even
// when the HTTP status is 200.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *Envelope) CheckResponse() error {
	if e.Code == 0 {
		return nil
	}
	return &APIError{Code: e.Code, Message: e.Message}
}

type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("subscan error %d: %s", e.Code, e.Message)
}

type pageRequest struct {
	Row     int    `json:"row"`
	Page    int    `json:"page"`
	Address string `json:"address"`
}

type rewardRequest struct {
	pageRequest
	Category string `json:"category"`
}

type transfersData struct {
	Count     int               `json:"count"`
	Transfers []json.RawMessage `json:"transfers"`
}

type rewardsData struct {
	Count int               `json:"count"`
	List  []json.RawMessage `json:"list"`
}

type accountData struct {
	Account struct {
		Address string `json:"address"`
		Balance string `json:"balance"`
	} `json:"account"`
}

// Transfer is a balances transfer event. Amount is already in the display
// unit; Fee is in plancks.
type Transfer struct {
	From           string `json:"from"`
	To             string `json:"to"`
	ExtrinsicIndex string `json:"extrinsic_index"`
	EventIdx       int    `json:"event_idx"`
	Success        bool   `json:"success"`
	Hash           string `json:"hash"`
	BlockNum       int64  `json:"block_num"`
	BlockTimestamp int64  `json:"block_timestamp"`
	Module         string `json:"module"`
	Amount         string `json:"amount"`
	Fee            string `json:"fee"`
}

// Reward is a staking reward event. Amount is in plancks.
type Reward struct {
	Era            int64  `json:"era"`
	Stash          string `json:"stash"`
	Account        string `json:"account"`
	ValidatorStash string `json:"validator_stash"`
	Amount         string `json:"amount"`
	BlockTimestamp int64  `json:"block_timestamp"`
	EventIndex     string `json:"event_index"`
	ModuleID       string `json:"module_id"`
	EventID        string `json:"event_id"`
	ExtrinsicIndex string `json:"extrinsic_index"`
}
