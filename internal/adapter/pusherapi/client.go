// Package pusherapi implements the Pusher-protocol HTTP client used to
// trigger events on the external broker (a hosted Pusher app or a
// Soketi-compatible node).
package pusherapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
)

const (
	authVersion = "1.0"

	// The events endpoint accepts at most ten channels per trigger.
	maxChannelsPerTrigger = 10

	defaultTimeout = 2 * time.Second
)

// Client triggers events through the broker's REST API. Construction is
// local and cheap; every Trigger call makes exactly one bounded HTTP
// request. Safe for concurrent use.
type Client struct {
	appID  string
	key    string
	secret string
	base   string

	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker[any]
	now        func() time.Time
}

// Options tunes the client. The zero value gives a plain client with the
// default timeout and no circuit breaker.
type Options struct {
	Timeout time.Duration
	// Breaker, when set, gates every trigger call: an open breaker fails
	// fast without a network round trip.
	Breaker circuitbreaker.CircuitBreaker[any]
	// Now overrides the auth timestamp source in tests.
	Now func() time.Time
}

// New builds a client bound to the given broker credentials. Key and secret
// are trimmed of incidental whitespace; config sources are not guaranteed
// to be whitespace-clean.
func New(cfg domain.BrokerConfig, opts Options) *Client {
	scheme := "http"
	if cfg.UseTLS {
		scheme = "https"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		appID:      strings.TrimSpace(cfg.AppID),
		key:        strings.TrimSpace(cfg.Key),
		secret:     strings.TrimSpace(cfg.Secret),
		base:       scheme + "://" + net.JoinHostPort(cfg.PublicHost, strconv.Itoa(cfg.PublicPort)),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    opts.Breaker,
		now:        now,
	}
}

type triggerBody struct {
	Name     string   `json:"name"`
	Channels []string `json:"channels"`
	Data     string   `json:"data"`
}

// Trigger publishes one event on one channel.
func (c *Client) Trigger(ctx context.Context, channel, event string, payload any) error {
	return c.TriggerMulti(ctx, []string{channel}, event, payload)
}

// TriggerMulti publishes one event on up to ten channels in a single call.
func (c *Client) TriggerMulti(ctx context.Context, channels []string, event string, payload any) error {
	if len(channels) == 0 {
		return fmt.Errorf("trigger requires at least one channel")
	}
	if len(channels) > maxChannelsPerTrigger {
		return fmt.Errorf("trigger accepts at most %d channels, got %d", maxChannelsPerTrigger, len(channels))
	}

	// The protocol carries the event payload as a JSON string inside the
	// request body, serialized exactly once.
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	body, err := json.Marshal(triggerBody{Name: event, Channels: channels, Data: string(data)})
	if err != nil {
		return fmt.Errorf("marshal trigger body: %w", err)
	}

	if c.breaker != nil && !c.breaker.TryAcquirePermit() {
		return fmt.Errorf("publish circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	err = c.post(ctx, body)
	if c.breaker != nil {
		if err != nil {
			c.breaker.RecordError(err)
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return err
}

func (c *Client) post(ctx context.Context, body []byte) error {
	path := "/apps/" + c.appID + "/events"
	query := c.signedQuery(http.MethodPost, path, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path+"?"+query, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trigger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("broker rejected trigger: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}

// signedQuery builds the sorted, signed query string the broker edge
// verifies: auth_signature = HMAC-SHA256(secret,
// "<method>\n<path>\n<sorted query>").
func (c *Client) signedQuery(method, path string, body []byte) string {
	bodyMD5 := md5.Sum(body)

	params := map[string]string{
		"auth_key":       c.key,
		"auth_timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"auth_version":   authVersion,
		"body_md5":       hex.EncodeToString(bodyMD5[:]),
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	unsigned := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(method + "\n" + path + "\n" + unsigned))

	return unsigned + "&auth_signature=" + hex.EncodeToString(mac.Sum(nil))
}
