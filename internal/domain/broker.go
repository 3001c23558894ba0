package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// BrokerConfig holds the credentials and endpoint of the pub/sub broker for
// one deployment. Values are immutable once read; a changed value triggers a
// client rebuild in the resolver. The secret must never appear in responses
// or logs.
type BrokerConfig struct {
	AppID      string
	Key        string
	Secret     string
	PublicHost string
	PublicPort int
	UseTLS     bool
	Enabled    bool
}

// Fingerprint derives the cache-invalidation key for this config. It is
// never persisted and never logged in full.
func (c BrokerConfig) Fingerprint() string {
	parts := []string{
		c.AppID,
		c.Key,
		c.Secret,
		c.PublicHost,
		strconv.Itoa(c.PublicPort),
		strconv.FormatBool(c.UseTLS),
	}
	return strings.Join(parts, "|")
}

// SecretDigest returns an 8-character hex prefix of the secret's SHA-256,
// safe to log for diagnostic correlation.
func (c BrokerConfig) SecretDigest() string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(c.Secret)))
	return hex.EncodeToString(sum[:])[:8]
}

// BrokerConfigProvider supplies the current broker config. Implementations
// must be safe to call frequently and must reflect credential rotation
// within a bounded delay.
type BrokerConfigProvider interface {
	GetBrokerConfig(ctx context.Context) (*BrokerConfig, error)
}

// EventPublisher triggers a named event on a broker channel. Implemented by
// the broker HTTP client adapter.
type EventPublisher interface {
	Trigger(ctx context.Context, channel, event string, payload any) error
}

// ResolvedClient is a ready-to-use broker client handle paired with the
// config it was built from. The channel host is what subscriber-facing
// surfaces display; the secret stays inside Config and never leaves the
// process.
type ResolvedClient struct {
	Publisher   EventPublisher
	Config      BrokerConfig
	ChannelHost string
}
