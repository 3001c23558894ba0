package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/jonboulle/clockwork"
)

// CachedProvider is an in-process TTL cache in front of a slower config
// provider, so that GetBrokerConfig stays cheap on every authorization and
// resolve call. The TTL bounds how long a rotated credential can stay
// unseen; Invalidate shortcuts the wait when a rotation notification
// arrives.
type CachedProvider struct {
	inner domain.BrokerConfigProvider
	clock clockwork.Clock
	ttl   time.Duration

	mu        sync.Mutex
	cached    *domain.BrokerConfig
	fetchedAt time.Time
}

func NewCachedProvider(inner domain.BrokerConfigProvider, ttl time.Duration, clock clockwork.Clock) *CachedProvider {
	return &CachedProvider{inner: inner, clock: clock, ttl: ttl}
}

func (p *CachedProvider) GetBrokerConfig(ctx context.Context) (*domain.BrokerConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.clock.Since(p.fetchedAt) < p.ttl {
		return p.cached, nil
	}

	cfg, err := p.inner.GetBrokerConfig(ctx)
	if err != nil {
		return nil, err
	}

	p.cached = cfg
	p.fetchedAt = p.clock.Now()
	return cfg, nil
}

// Invalidate drops the cached config so the next call re-reads the source.
func (p *CachedProvider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
