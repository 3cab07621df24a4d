package dragonglass

import "encoding/json"

type TransactionPage struct {
	TotalCount int               `json:"totalCount"`
	Size       int               `json:"size"`
	Data       []json.RawMessage `json:"data"`
}

// Transaction is a DragonGlass transaction record. Amounts are tinybars; a
// negative transfer amount debits the account.
type Transaction struct {
	TransactionID   string     `json:"transactionID"`
	TransactionHash string     `json:"transactionHash"`
	ConsensusTime   string     `json:"consensusTime"`
	PayerID         string     `json:"payerID"`
	NodeID          string     `json:"nodeID"`
	Memo            string     `json:"memo"`
	TransactionFee  int64      `json:"transactionFee"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	Transfers       []Transfer `json:"transfers"`
}

type Transfer struct {
	AccountID string `json:"accountID"`
	Amount    int64  `json:"amount"`
}

type Account struct {
	AccountID string `json:"accountID"`
	Balance   int64  `json:"balance"`
}
