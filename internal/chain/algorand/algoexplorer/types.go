package algoexplorer

import "encoding/json"

// TransactionList is the body of the account transaction range endpoint.
type TransactionList struct {
	Transactions []json.RawMessage `json:"transactions"`
}

// Transaction is a v1 transaction record. Amounts are microalgos.
type Transaction struct {
	Type        string   `json:"type"`
	TxID        string   `json:"tx"`
	From        string   `json:"from"`
	Fee         uint64   `json:"fee"`
	Round       int64    `json:"round"`
	Timestamp   int64    `json:"timestamp"`
	PoolError   string   `json:"poolerror"`
	FromRewards uint64   `json:"fromrewards"`
	Payment     *Payment `json:"payment"`
	NoteB64     string   `json:"noteb64"`
}

type Payment struct {
	To           string `json:"to"`
	Amount       uint64 `json:"amount"`
	ToRewards    uint64 `json:"torewards"`
	Close        string `json:"close"`
	CloseAmount  uint64 `json:"closeamount"`
	CloseRewards uint64 `json:"closerewards"`
}

// Account is the subset of the account endpoint used for reconciliation.
type Account struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}
