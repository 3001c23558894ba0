package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
)

const settingsInvalidationChannel = "broker_settings:invalidate"

// SettingsInvalidationSubscriber listens for credential rotation
// notifications and drops the Redis and in-process caches so the new
// settings become visible without waiting for the TTL.
type SettingsInvalidationSubscriber struct {
	rdb      *goredis.Client
	cache    *SettingsCacheRepo
	tenantID string
	// onInvalidate drops caches above this layer (the in-process TTL cache).
	onInvalidate func()
}

func NewSettingsInvalidationSubscriber(rdb *goredis.Client, cache *SettingsCacheRepo, tenantID string, onInvalidate func()) *SettingsInvalidationSubscriber {
	return &SettingsInvalidationSubscriber{rdb: rdb, cache: cache, tenantID: tenantID, onInvalidate: onInvalidate}
}

// Start blocks consuming invalidation messages until ctx is cancelled.
func (s *SettingsInvalidationSubscriber) Start(ctx context.Context) {
	pubsub := s.rdb.Subscribe(ctx, settingsInvalidationChannel)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			if msg == nil {
				return
			}
			s.handleInvalidation(ctx, msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SettingsInvalidationSubscriber) handleInvalidation(ctx context.Context, payload string) {
	if payload == "" {
		slog.Warn("Empty settings invalidation message")
		return
	}
	if payload != s.tenantID {
		return
	}

	if err := s.cache.InvalidateCache(ctx); err != nil {
		slog.Warn("Failed to invalidate settings cache via pub/sub", "tenant_id", payload, "error", err)
	}
	if s.onInvalidate != nil {
		s.onInvalidate()
	}

	slog.Debug("Broker settings cache invalidated via pub/sub", "tenant_id", payload)
}

// PublishSettingsInvalidation notifies all gateway instances that the
// tenant's broker settings changed. Called by administrative tooling after
// a rotation.
func PublishSettingsInvalidation(ctx context.Context, rdb *goredis.Client, tenantID string) error {
	if err := rdb.Publish(ctx, settingsInvalidationChannel, tenantID).Err(); err != nil {
		return fmt.Errorf("failed to publish settings invalidation: %w", err)
	}
	return nil
}
