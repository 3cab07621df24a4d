package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAlert() Alert {
	return Alert{
		Type:    AlertTypeExportFailed,
		Chain:   "ethereum",
		Account: "0x00000000000000000000000000000000000000aa",
		Title:   "Export failed",
		Message: "explorer returned status 503",
		Fields: map[string]string{
			"stream":  "txlist",
			"attempt": "3",
		},
	}
}

func countingServer(counter *atomic.Int32, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)
		w.WriteHeader(status)
	}))
}

func TestMultiAlerter_Send_AllChannels(t *testing.T) {
	var slackReceived, webhookReceived atomic.Int32

	slackSrv := countingServer(&slackReceived, http.StatusOK)
	defer slackSrv.Close()
	webhookSrv := countingServer(&webhookReceived, http.StatusOK)
	defer webhookSrv.Close()

	multi := NewMultiAlerter(time.Hour, testLogger(), NewSlackAlerter(slackSrv.URL), NewWebhookAlerter(webhookSrv.URL))

	require.NoError(t, multi.Send(context.Background(), testAlert()))

	assert.Equal(t, int32(1), slackReceived.Load())
	assert.Equal(t, int32(1), webhookReceived.Load())
}

func TestMultiAlerter_CooldownDedup(t *testing.T) {
	var received atomic.Int32
	srv := countingServer(&received, http.StatusOK)
	defer srv.Close()

	multi := NewMultiAlerter(time.Second, testLogger(), NewWebhookAlerter(srv.URL))

	a := testAlert()
	require.NoError(t, multi.Send(context.Background(), a))

	// Account casing differs but identifies the same address.
	a.Account = strings.ToUpper(a.Account)
	require.NoError(t, multi.Send(context.Background(), a))

	assert.Equal(t, int32(1), received.Load())
}

func TestMultiAlerter_CooldownIsPerAccount(t *testing.T) {
	var received atomic.Int32
	srv := countingServer(&received, http.StatusOK)
	defer srv.Close()

	multi := NewMultiAlerter(time.Hour, testLogger(), NewWebhookAlerter(srv.URL))

	a := testAlert()
	require.NoError(t, multi.Send(context.Background(), a))
	a.Account = "0x00000000000000000000000000000000000000bb"
	require.NoError(t, multi.Send(context.Background(), a))

	assert.Equal(t, int32(2), received.Load())
}

func TestMultiAlerter_CooldownExpiry(t *testing.T) {
	var received atomic.Int32
	srv := countingServer(&received, http.StatusOK)
	defer srv.Close()

	multi := NewMultiAlerter(time.Millisecond, testLogger(), NewWebhookAlerter(srv.URL))

	require.NoError(t, multi.Send(context.Background(), testAlert()))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, multi.Send(context.Background(), testAlert()))

	assert.Equal(t, int32(2), received.Load())
}

func TestMultiAlerter_PartialFailure(t *testing.T) {
	var failed, good atomic.Int32
	failSrv := countingServer(&failed, http.StatusInternalServerError)
	defer failSrv.Close()
	goodSrv := countingServer(&good, http.StatusOK)
	defer goodSrv.Close()

	multi := NewMultiAlerter(time.Hour, testLogger(), NewWebhookAlerter(failSrv.URL), NewWebhookAlerter(goodSrv.URL))

	err := multi.Send(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(1), good.Load(), "working channel still receives the alert")
}

func TestNew_NoChannelsIsNoop(t *testing.T) {
	a := New("", "", time.Minute, testLogger())
	_, ok := a.(*NoopAlerter)
	assert.True(t, ok)
	assert.NoError(t, a.Send(context.Background(), testAlert()))
}

func TestNew_ConfiguredChannels(t *testing.T) {
	a := New("https://hooks.slack.test/x", "https://alerts.test/hook", time.Minute, testLogger())
	multi, ok := a.(*MultiAlerter)
	require.True(t, ok)
	require.Len(t, multi.alerters, 2)
	assert.Equal(t, "slack", alerterName(multi.alerters[0]))
	assert.Equal(t, "webhook", alerterName(multi.alerters[1]))
}

func TestSlackAlerter_PayloadFormat(t *testing.T) {
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		capturedBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	alert := Alert{
		Type:    AlertTypeReconcileMismatch,
		Chain:   "tezos",
		Account: "tz1subject",
		Title:   "Balance mismatch",
		Message: "derived balance differs from explorer",
		Fields: map[string]string{
			"reported": "12.5",
			"derived":  "12.4",
		},
	}
	require.NoError(t, NewSlackAlerter(srv.URL).Send(context.Background(), alert))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(capturedBody, &payload))
	text := payload["text"]

	assert.True(t, strings.HasPrefix(text, ":scales:"))
	assert.Contains(t, text, "tezos/tz1subject")
	assert.Contains(t, text, "Balance mismatch")
	assert.Contains(t, text, "derived balance differs from explorer")
	// Fields render in key order.
	assert.Less(t, strings.Index(text, "*derived*"), strings.Index(text, "*reported*"))

	emojiTests := []struct {
		alertType AlertType
		emoji     string
	}{
		{AlertTypeExportFailed, ":warning:"},
		{AlertTypeReconcileMismatch, ":scales:"},
	}
	for _, tc := range emojiTests {
		t.Run(fmt.Sprintf("emoji_%s", tc.alertType), func(t *testing.T) {
			assert.Equal(t, tc.emoji, slackEmoji(tc.alertType))
		})
	}
}

func TestWebhookAlerter_PayloadFormat(t *testing.T) {
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		capturedBody = body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	beforeSend := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, NewWebhookAlerter(srv.URL).Send(context.Background(), testAlert()))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(capturedBody, &payload))

	assert.Equal(t, string(AlertTypeExportFailed), payload["type"])
	assert.Equal(t, "ethereum", payload["chain"])
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", payload["account"])
	assert.Equal(t, "Export failed", payload["title"])

	fields, ok := payload["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "txlist", fields["stream"])

	timeStr, ok := payload["time"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, timeStr)
	require.NoError(t, err)
	assert.False(t, parsed.Before(beforeSend))
}
