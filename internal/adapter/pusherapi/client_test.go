package pusherapi

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
)

func testConfig(t *testing.T, serverURL string) domain.BrokerConfig {
	t.Helper()

	parsed, err := url.Parse(serverURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(parsed.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return domain.BrokerConfig{
		AppID:      "1001",
		Key:        "pub_1",
		Secret:     "s3cr3t",
		PublicHost: host,
		PublicPort: port,
		UseTLS:     false,
		Enabled:    true,
	}
}

func TestTrigger_RequestShape(t *testing.T) {
	var gotPath, gotQuery string
	var gotBody []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := New(testConfig(t, ts.URL), Options{Now: func() time.Time { return fixed }})

	err := client.Trigger(context.Background(), "private-tenant.acme.notifications", "payment-notification",
		map[string]any{"paymentId": "p1"})
	require.NoError(t, err)

	assert.Equal(t, "/apps/1001/events", gotPath)

	var body triggerBody
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "payment-notification", body.Name)
	assert.Equal(t, []string{"private-tenant.acme.notifications"}, body.Channels)

	// The payload travels as a JSON string, serialized exactly once.
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(body.Data), &data))
	assert.Equal(t, map[string]any{"paymentId": "p1"}, data)

	params, err := url.ParseQuery(gotQuery)
	require.NoError(t, err)
	assert.Equal(t, "pub_1", params.Get("auth_key"))
	assert.Equal(t, "1.0", params.Get("auth_version"))
	assert.Equal(t, strconv.FormatInt(fixed.Unix(), 10), params.Get("auth_timestamp"))

	bodyMD5 := md5.Sum(gotBody)
	assert.Equal(t, hex.EncodeToString(bodyMD5[:]), params.Get("body_md5"))
}

func TestTrigger_SignatureVerifiable(t *testing.T) {
	var gotQuery string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := New(testConfig(t, ts.URL), Options{})

	err := client.Trigger(context.Background(), "private-tenant.acme.tickets", "ticket-created",
		map[string]any{"ticketId": "t1"})
	require.NoError(t, err)

	// Reconstruct the signature the way the broker edge does.
	signatureSuffix := "&auth_signature="
	idx := strings.Index(gotQuery, signatureSuffix)
	require.Positive(t, idx)
	unsigned := gotQuery[:idx]
	signature := gotQuery[idx+len(signatureSuffix):]

	mac := hmac.New(sha256.New, []byte("s3cr3t"))
	mac.Write([]byte("POST\n/apps/1001/events\n" + unsigned))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestTrigger_TrimsCredentialWhitespace(t *testing.T) {
	var gotKey string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("auth_key")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := testConfig(t, ts.URL)
	cfg.Key = " pub_1\n"
	cfg.Secret = "s3cr3t \n"
	client := New(cfg, Options{})

	err := client.Trigger(context.Background(), "private-tenant.acme.tickets", "ticket-created", nil)
	require.NoError(t, err)
	assert.Equal(t, "pub_1", gotKey)
}

func TestTrigger_BrokerRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := New(testConfig(t, ts.URL), Options{})

	err := client.Trigger(context.Background(), "private-tenant.acme.tickets", "ticket-created", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestTrigger_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := New(testConfig(t, ts.URL), Options{Timeout: 20 * time.Millisecond})

	err := client.Trigger(context.Background(), "private-tenant.acme.tickets", "ticket-created", nil)
	require.Error(t, err)
}

func TestTriggerMulti_ChannelLimits(t *testing.T) {
	client := New(domain.BrokerConfig{AppID: "1", Key: "k", Secret: "s", PublicHost: "localhost", PublicPort: 1}, Options{})

	err := client.TriggerMulti(context.Background(), nil, "ev", nil)
	require.Error(t, err)

	channels := make([]string, maxChannelsPerTrigger+1)
	for i := range channels {
		channels[i] = "private-c." + strconv.Itoa(i)
	}
	err = client.TriggerMulti(context.Background(), channels, "ev", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most")
}

func TestTrigger_BreakerFailsFastWhenOpen(t *testing.T) {
	var requests atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := New(testConfig(t, ts.URL), Options{Breaker: NewPublishBreaker()})

	// Enough consecutive failures to trip the rate threshold.
	for range breakerMinRequests {
		err := client.Trigger(context.Background(), "private-tenant.acme.tickets", "ticket-created", nil)
		require.Error(t, err)
	}
	tripped := requests.Load()

	err := client.Trigger(context.Background(), "private-tenant.acme.tickets", "ticket-created", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, tripped, requests.Load(), "open breaker must not reach the broker")
}
