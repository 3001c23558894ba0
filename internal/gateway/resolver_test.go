package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFactory builds a fresh publisher per call so rebuilds are
// observable by handle identity.
func countingFactory() (PublisherFactory, *int) {
	builds := 0
	return func(domain.BrokerConfig) domain.EventPublisher {
		builds++
		return &fakePublisher{}
	}, &builds
}

func TestResolve_StableAcrossUnchangedConfig(t *testing.T) {
	provider := &fakeProvider{cfg: enabledConfig()}
	factory, builds := countingFactory()
	resolver := NewResolver(provider, factory)

	first := resolver.Resolve(context.Background())
	require.NotNil(t, first)

	for range 10 {
		again := resolver.Resolve(context.Background())
		require.NotNil(t, again)
		assert.Same(t, first, again)
	}
	assert.Equal(t, 1, *builds)
}

func TestResolve_RebuildsOnFingerprintChange(t *testing.T) {
	provider := &fakeProvider{cfg: enabledConfig()}
	factory, builds := countingFactory()
	resolver := NewResolver(provider, factory)

	first := resolver.Resolve(context.Background())
	require.NotNil(t, first)

	rotated := enabledConfig()
	rotated.Secret = "rotated-secret"
	provider.set(rotated)

	second := resolver.Resolve(context.Background())
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, "rotated-secret", second.Config.Secret)
	assert.Equal(t, 2, *builds)

	// Stable again once the new fingerprint sticks.
	assert.Same(t, second, resolver.Resolve(context.Background()))
	assert.Equal(t, 2, *builds)
}

func TestResolve_DisabledReturnsNil(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	resolver := newTestResolver(&fakeProvider{cfg: cfg}, &fakePublisher{})

	assert.Nil(t, resolver.Resolve(context.Background()))
}

func TestResolve_ProviderErrorReturnsNil(t *testing.T) {
	resolver := newTestResolver(&fakeProvider{err: errors.New("store down")}, &fakePublisher{})

	assert.Nil(t, resolver.Resolve(context.Background()))
}

func TestResolve_AbsentConfigReturnsNil(t *testing.T) {
	resolver := newTestResolver(&fakeProvider{err: domain.ErrSettingsNotFound}, &fakePublisher{})

	assert.Nil(t, resolver.Resolve(context.Background()))
}

func TestResolve_ChannelHost(t *testing.T) {
	resolver := newTestResolver(&fakeProvider{cfg: enabledConfig()}, &fakePublisher{})

	client := resolver.Resolve(context.Background())
	require.NotNil(t, client)
	assert.Equal(t, "broker.example.com:6001", client.ChannelHost)
}

func TestResolve_RecoversAfterOutage(t *testing.T) {
	provider := &fakeProvider{cfg: enabledConfig()}
	factory, _ := countingFactory()
	resolver := NewResolver(provider, factory)

	require.NotNil(t, resolver.Resolve(context.Background()))

	provider.mu.Lock()
	provider.err = errors.New("store down")
	provider.mu.Unlock()
	assert.Nil(t, resolver.Resolve(context.Background()))

	provider.mu.Lock()
	provider.err = nil
	provider.mu.Unlock()
	assert.NotNil(t, resolver.Resolve(context.Background()))
}

func TestResolve_ConcurrentCallsShareOneClient(t *testing.T) {
	provider := &fakeProvider{cfg: enabledConfig()}
	factory, builds := countingFactory()
	resolver := NewResolver(provider, factory)

	var wg sync.WaitGroup
	clients := make([]*domain.ResolvedClient, 32)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i] = resolver.Resolve(context.Background())
		}(i)
	}
	wg.Wait()

	for _, client := range clients {
		require.NotNil(t, client)
		assert.Same(t, clients[0], client)
	}
	assert.Equal(t, 1, *builds)
}
