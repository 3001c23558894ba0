package gateway

import (
	"context"
	"sync"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
)

type fakeProvider struct {
	mu    sync.Mutex
	cfg   *domain.BrokerConfig
	err   error
	calls int
}

func (f *fakeProvider) GetBrokerConfig(ctx context.Context) (*domain.BrokerConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

func (f *fakeProvider) set(cfg *domain.BrokerConfig) {
	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type publishCall struct {
	channel string
	event   string
	payload any
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (f *fakePublisher) Trigger(ctx context.Context, channel, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, publishCall{channel: channel, event: event, payload: payload})
	return nil
}

func (f *fakePublisher) published() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishCall(nil), f.calls...)
}

func enabledConfig() *domain.BrokerConfig {
	return &domain.BrokerConfig{
		AppID:      "1001",
		Key:        "pub_1",
		Secret:     "s3cr3t",
		PublicHost: "broker.example.com",
		PublicPort: 6001,
		UseTLS:     true,
		Enabled:    true,
	}
}

func newTestResolver(provider domain.BrokerConfigProvider, publisher domain.EventPublisher) *Resolver {
	return NewResolver(provider, func(domain.BrokerConfig) domain.EventPublisher {
		return publisher
	})
}
