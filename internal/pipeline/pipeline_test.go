package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/alert"
	"github.com/emperorhan/chain-ledger-export/internal/chain"
	"github.com/emperorhan/chain-ledger-export/internal/chain/explorer"
	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/fetcher"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var base = time.Date(2020, 9, 13, 12, 0, 0, 0, time.UTC)

// staticSource serves a fixed list of transactions, one JSON index per record.
type staticSource struct {
	txs []model.Transaction
	err error
}

func (s *staticSource) Chain() model.Chain { return model.ChainEthereum }
func (s *staticSource) Stream() string     { return "static" }

func (s *staticSource) FetchPage(_ context.Context, _ string, limit, offset int) ([]json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []json.RawMessage
	for i := offset; i < offset+limit && i < len(s.txs); i++ {
		out = append(out, json.RawMessage(strconv.Itoa(i)))
	}
	return out, nil
}

func (s *staticSource) normalizer() chain.Normalizer {
	return chain.NormalizerFunc(func(raw json.RawMessage) (model.Transaction, error) {
		i, err := strconv.Atoi(string(raw))
		if err != nil {
			return model.Transaction{}, err
		}
		return s.txs[i], nil
	})
}

type fakeExporter struct {
	source     *staticSource
	balance    decimal.Decimal
	balanceErr error
	invalid    bool
}

func (f *fakeExporter) Streams() []chain.Stream {
	return []chain.Stream{{Source: f.source, Normalizer: f.source.normalizer()}}
}

func (f *fakeExporter) ValidateAccount(string) error {
	if f.invalid {
		return errors.New("bad checksum")
	}
	return nil
}

func (f *fakeExporter) GetBalance(context.Context, string) (decimal.Decimal, error) {
	return f.balance, f.balanceErr
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (r *recordingAlerter) Send(_ context.Context, a alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func scenarioTxs() []model.Transaction {
	return []model.Transaction{
		{
			ID: "tx1", Chain: model.ChainEthereum, Kind: model.KindTransfer, Timestamp: base,
			Sender: "0xB", Receiver: "0xA", Amount: decimal.RequireFromString("5"), Fee: decimal.Zero, Success: true,
		},
		{
			ID: "tx2", Chain: model.ChainEthereum, Kind: model.KindTransfer, Timestamp: base.Add(time.Hour),
			Sender: "0xA", Receiver: "0xC", Amount: decimal.RequireFromString("2"), Fee: decimal.RequireFromString("0.01"), Success: false,
		},
	}
}

func TestRun_EndToEndScenario(t *testing.T) {
	exp := &fakeExporter{source: &staticSource{txs: scenarioTxs()}}
	p, err := New(model.ChainEthereum, exp, fetcher.New(testLogger()), nil, testLogger())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), Job{Account: "0xA", PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"tx1"}, model.IDs(res.Statement.Incoming))
	assert.Empty(t, res.Statement.Outgoing)
	assert.Equal(t, []string{"tx2"}, model.IDs(res.Statement.FeeIncurring))

	assert.Equal(t, "5", res.Balance.Incoming.String())
	assert.True(t, res.Balance.Outgoing.IsZero())
	assert.Equal(t, "0.01", res.Balance.Fees.String())
	assert.Equal(t, "4.99", res.Balance.Net.String())

	require.Len(t, res.Rows, 2)
	assert.Equal(t, model.ActivityOtherFee, res.Rows[0].Type)
	assert.Equal(t, "tx2", res.Rows[0].TxID)
	assert.Equal(t, model.ActivityDeposit, res.Rows[1].Type)
	assert.Nil(t, res.Reconciliation)
}

func TestRun_AppliesKnownTransactions(t *testing.T) {
	exp := &fakeExporter{source: &staticSource{txs: scenarioTxs()}}
	p, err := New(model.ChainEthereum, exp, nil, nil, testLogger())
	require.NoError(t, err)

	group := "Salary"
	res, err := p.Run(context.Background(), Job{
		Account:  "0xA",
		PageSize: 10,
		Known:    []model.Patch{{TxID: "tx1", Group: &group}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Overrides)
	assert.Equal(t, "Salary", res.Rows[1].Group)
	assert.Equal(t, "Export", res.Rows[1].Comment)
}

func TestRun_ReconcilesFullHistoryOnly(t *testing.T) {
	exp := &fakeExporter{source: &staticSource{txs: scenarioTxs()}, balance: decimal.RequireFromString("4.99")}
	alerts := &recordingAlerter{}
	p, err := New(model.ChainEthereum, exp, nil, alerts, testLogger())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), Job{Account: "0xA", PageSize: 10, Reconcile: true})
	require.NoError(t, err)
	require.NotNil(t, res.Reconciliation)
	assert.True(t, res.Reconciliation.IsMatch)

	res, err = p.Run(context.Background(), Job{
		Account:   "0xA",
		PageSize:  10,
		Reconcile: true,
		Cutoff:    model.Cutoff{Time: base.Add(30 * time.Minute)},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Reconciliation)
	assert.Equal(t, []string{"tx2"}, model.IDs(res.Statement.FeeIncurring))
	assert.Empty(t, res.Statement.Incoming)
	assert.Empty(t, alerts.alerts)
}

func TestRun_ReconcileMismatchAlerts(t *testing.T) {
	exp := &fakeExporter{source: &staticSource{txs: scenarioTxs()}, balance: decimal.RequireFromString("5")}
	alerts := &recordingAlerter{}
	p, err := New(model.ChainEthereum, exp, nil, alerts, testLogger())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), Job{Account: "0xA", PageSize: 10, Reconcile: true})
	require.NoError(t, err)
	assert.False(t, res.Reconciliation.IsMatch)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, alert.AlertTypeReconcileMismatch, alerts.alerts[0].Type)
}

func TestRun_FailuresAlertAndReturnNoResult(t *testing.T) {
	tests := []struct {
		name string
		exp  *fakeExporter
		job  Job
		want string
	}{
		{
			name: "invalid account",
			exp:  &fakeExporter{source: &staticSource{}, invalid: true},
			job:  Job{Account: "nope", PageSize: 10},
			want: "bad checksum",
		},
		{
			name: "source failure",
			exp:  &fakeExporter{source: &staticSource{err: errors.New("explorer returned status 503")}},
			job:  Job{Account: "0xA", PageSize: 10},
			want: "status 503",
		},
		{
			name: "balance query failure",
			exp:  &fakeExporter{source: &staticSource{txs: scenarioTxs()}, balanceErr: errors.New("timeout")},
			job:  Job{Account: "0xA", PageSize: 10, Reconcile: true},
			want: "timeout",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := &recordingAlerter{}
			p, err := New(model.ChainEthereum, tc.exp, nil, alerts, testLogger())
			require.NoError(t, err)

			res, err := p.Run(context.Background(), tc.job)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), tc.want)

			require.Len(t, alerts.alerts, 1)
			assert.Equal(t, alert.AlertTypeExportFailed, alerts.alerts[0].Type)
			assert.Equal(t, tc.job.Account, alerts.alerts[0].Account)
		})
	}
}

func TestNew_UnknownChain(t *testing.T) {
	_, err := New(model.Chain("bitcoin"), &fakeExporter{}, nil, nil, testLogger())
	require.Error(t, err)
}

// etherscanServer serves txlist, txlistinternal and balance for one account.
func etherscanServer(t *testing.T, normal, internal []map[string]string, wei string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apikey"))

		var records []map[string]string
		switch q.Get("action") {
		case "balance":
			fmt.Fprintf(w, `{"status":"1","message":"OK","result":%q}`, wei)
			return
		case "txlist":
			records = normal
		case "txlistinternal":
			records = internal
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}

		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("offset"))
		var out []map[string]string
		for i := (page - 1) * size; i < page*size && i < len(records); i++ {
			out = append(out, records[i])
		}
		if len(out) == 0 {
			fmt.Fprint(w, `{"status":"0","message":"No transactions found","result":[]}`)
			return
		}
		body, _ := json.Marshal(map[string]any{"status": "1", "message": "OK", "result": out})
		_, _ = w.Write(body)
	}))
}

func TestRegistry_EthereumEndToEnd(t *testing.T) {
	const (
		subject = "0x00000000000000000000000000000000000000aa"
		other   = "0x00000000000000000000000000000000000000bb"
		token   = "0x00000000000000000000000000000000000000cc"
	)
	normal := []map[string]string{
		{
			"blockNumber": "100", "timeStamp": "1600000000", "hash": "0x01", "from": other, "to": subject,
			"value": "5000000000000000000", "gasPrice": "1000000000", "gasUsed": "21000",
			"isError": "0", "txreceipt_status": "1",
		},
		{
			"blockNumber": "101", "timeStamp": "1600000100", "hash": "0x02", "from": subject, "to": other,
			"value": "2000000000000000000", "gasPrice": "1000000000", "gasUsed": "21000",
			"isError": "0", "txreceipt_status": "1",
		},
	}
	internal := []map[string]string{
		{
			"blockNumber": "102", "timeStamp": "1600000200", "hash": "0x03", "from": token, "to": subject,
			"value": "1000000000000000000", "traceId": "0", "isError": "0",
		},
	}
	srv := etherscanServer(t, normal, internal, "3999979000000000000")
	defer srv.Close()

	exp, err := DefaultRegistry().Build(explorer.Config{
		Chain:       model.ChainEthereum,
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		APIKeyParam: "apikey",
	}, testLogger())
	require.NoError(t, err)

	p, err := New(model.ChainEthereum, exp, fetcher.New(testLogger()), nil, testLogger())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), Job{Account: subject, PageSize: 1000, Reconcile: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"0x03", "0x01"}, model.IDs(res.Statement.Incoming))
	assert.Equal(t, []string{"0x02"}, model.IDs(res.Statement.Outgoing))
	assert.Equal(t, []string{"0x02"}, model.IDs(res.Statement.FeeIncurring))
	assert.Equal(t, "3.999979", res.Balance.Net.String())
	require.NotNil(t, res.Reconciliation)
	assert.True(t, res.Reconciliation.IsMatch)

	require.Len(t, res.Rows, 4)
	assert.Equal(t, "Export. Internal", res.Rows[0].Comment)
}
