package tzkt

import "encoding/json"

// Alias is TzKT's account reference.
type Alias struct {
	Alias   string `json:"alias"`
	Address string `json:"address"`
}

// Operation is the union of the operation shapes the exporter reads; fields
// absent from a given type decode to their zero value. Amounts are mutez.
type Operation struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Level     int64  `json:"level"`
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash"`
	Status    string `json:"status"`

	Sender    *Alias `json:"sender"`
	Target    *Alias `json:"target"`
	Initiator *Alias `json:"initiator"`

	Amount        json.Number `json:"amount"`
	BakerFee      json.Number `json:"bakerFee"`
	StorageFee    json.Number `json:"storageFee"`
	AllocationFee json.Number `json:"allocationFee"`

	// activation
	Account *Alias      `json:"account"`
	Balance json.Number `json:"balance"`

	// origination
	OriginatedContract *Alias      `json:"originatedContract"`
	ContractBalance    json.Number `json:"contractBalance"`

	// delegation
	NewDelegate *Alias `json:"newDelegate"`
}
