package etherscan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is the envelope of every Etherscan account-module response.
// Result is an array on success and a message string on failure.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// CheckResponse reports a status "0" envelope as an error unless it is the
// empty-history case.
func (r *Response) CheckResponse() error {
	if r.Status == "1" || r.IsEmpty() {
		return nil
	}
	var detail string
	if err := json.Unmarshal(r.Result, &detail); err != nil {
		detail = string(r.Result)
	}
	return &APIError{Message: r.Message, Result: detail}
}

// IsEmpty reports Etherscan's "No transactions found" answer, which is an
// empty page rather than a failure.
func (r *Response) IsEmpty() bool {
	return r.Status == "0" && strings.HasPrefix(r.Message, "No transactions found")
}

type APIError struct {
	Message string
	Result  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("etherscan error: %s: %s", e.Message, e.Result)
}

// NormalTx is one record of action=txlist.
type NormalTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
	ContractAddress string `json:"contractAddress"`
	Input           string `json:"input"`
}

// InternalTx is one record of action=txlistinternal.
type InternalTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	Type            string `json:"type"`
	Gas             string `json:"gas"`
	GasUsed         string `json:"gasUsed"`
	TraceID         string `json:"traceId"`
	IsError         string `json:"isError"`
	ErrCode         string `json:"errCode"`
}
