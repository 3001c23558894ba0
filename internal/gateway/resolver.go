package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/metrics"
)

// PublisherFactory builds a broker publisher bound to the given credentials.
// Construction must be local and cheap; network I/O happens only when the
// publisher is used.
type PublisherFactory func(cfg domain.BrokerConfig) domain.EventPublisher

// Resolver turns the current broker config into a ready-to-use client
// handle. It holds a single-slot cache keyed by the config fingerprint:
// repeated calls with an unchanged config return the same handle, a rotated
// config rebuilds it. Safe for concurrent use; readers may observe either
// the old or the new client during a rotation.
type Resolver struct {
	provider domain.BrokerConfigProvider
	factory  PublisherFactory

	mu          sync.RWMutex
	fingerprint string
	client      *domain.ResolvedClient
}

func NewResolver(provider domain.BrokerConfigProvider, factory PublisherFactory) *Resolver {
	return &Resolver{provider: provider, factory: factory}
}

// Resolve returns the broker client for the current config, or nil when
// broadcasting is unavailable (config absent, unreadable or disabled).
// Callers must treat nil as "broadcasting unavailable right now", not as a
// fatal error.
func (r *Resolver) Resolve(ctx context.Context) *domain.ResolvedClient {
	cfg, err := r.provider.GetBrokerConfig(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			slog.WarnContext(ctx, "Failed to read broker config, broadcasting unavailable", "error", err)
		}
		return nil
	}
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	fingerprint := cfg.Fingerprint()

	r.mu.RLock()
	if r.client != nil && r.fingerprint == fingerprint {
		client := r.client
		r.mu.RUnlock()
		return client
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil && r.fingerprint == fingerprint {
		return r.client
	}

	rebuilt := r.client != nil
	r.client = &domain.ResolvedClient{
		Publisher:   r.factory(*cfg),
		Config:      *cfg,
		ChannelHost: net.JoinHostPort(cfg.PublicHost, strconv.Itoa(cfg.PublicPort)),
	}
	r.fingerprint = fingerprint

	if rebuilt {
		metrics.ClientRebuildsTotal.Inc()
	}
	slog.InfoContext(ctx, "Broker client built",
		"host", cfg.PublicHost,
		"port", cfg.PublicPort,
		"use_tls", cfg.UseTLS,
		"secret_digest", cfg.SecretDigest(),
		"rebuilt", rebuilt,
	)

	return r.client
}
