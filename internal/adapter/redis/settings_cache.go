package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/metrics"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/crypto"
)

const (
	settingsCachePrefix = "broker_settings:"
	settingsCacheTTL    = 1 * time.Hour
)

// SettingsCacheRepo provides read-through broker settings caching:
// Redis → PostgreSQL. The in-process TTL cache (gateway.CachedProvider)
// sits above this layer. Cached values are sealed with the cipher before
// they reach Redis; the signing secret exists in the clear only in the
// Postgres settings table and in process memory.
type SettingsCacheRepo struct {
	rdb      goredis.Cmdable
	settings domain.BrokerConfigProvider
	tenantID string
	cipher   crypto.Service
}

// NewSettingsCacheRepo creates a new read-through settings cache.
func NewSettingsCacheRepo(rdb goredis.Cmdable, settings domain.BrokerConfigProvider, tenantID string, cipher crypto.Service) *SettingsCacheRepo {
	return &SettingsCacheRepo{rdb: rdb, settings: settings, tenantID: tenantID, cipher: cipher}
}

// GetBrokerConfig looks up the broker settings with read-through caching.
// Read path: Redis GET → decrypt → PostgreSQL query → populate Redis cache.
// Redis and decryption errors fall through to PostgreSQL, never fail the
// lookup; an undecryptable entry (key rotation, tampering) is overwritten
// on repopulation.
func (r *SettingsCacheRepo) GetBrokerConfig(ctx context.Context) (*domain.BrokerConfig, error) {
	key := settingsCachePrefix + r.tenantID

	sealed, err := r.rdb.Get(ctx, key).Result()
	if err == nil {
		cfg, err := r.decodeSealed(sealed)
		if err != nil {
			slog.Warn("Failed to decode cached broker settings, falling through to PostgreSQL",
				"tenant_id", r.tenantID, "error", err)
		} else {
			metrics.SettingsCacheRedisHits.Inc()
			return cfg, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		slog.Warn("Redis settings cache GET failed, falling through to PostgreSQL",
			"tenant_id", r.tenantID, "error", err)
	}

	cfg, err := r.settings.GetBrokerConfig(ctx)
	if err != nil {
		return nil, err
	}

	metrics.SettingsCachePostgresHits.Inc()

	// Populate Redis cache (best-effort)
	if sealed, err := r.encodeSealed(cfg); err != nil {
		slog.Warn("Failed to seal broker settings for caching", "tenant_id", r.tenantID, "error", err)
	} else if err := r.rdb.Set(ctx, key, sealed, settingsCacheTTL).Err(); err != nil {
		slog.Warn("Failed to populate Redis settings cache",
			"tenant_id", r.tenantID, "error", err)
	}

	return cfg, nil
}

// InvalidateCache removes the tenant's broker settings from the Redis cache.
func (r *SettingsCacheRepo) InvalidateCache(ctx context.Context) error {
	if err := r.rdb.Del(ctx, settingsCachePrefix+r.tenantID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate settings cache: %w", err)
	}
	return nil
}

func (r *SettingsCacheRepo) encodeSealed(cfg *domain.BrokerConfig) (string, error) {
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal broker settings: %w", err)
	}
	sealed, err := r.cipher.Encrypt(string(encoded))
	if err != nil {
		return "", fmt.Errorf("seal broker settings: %w", err)
	}
	return sealed, nil
}

func (r *SettingsCacheRepo) decodeSealed(sealed string) (*domain.BrokerConfig, error) {
	plain, err := r.cipher.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("open broker settings: %w", err)
	}
	var cfg domain.BrokerConfig
	if err := json.Unmarshal([]byte(plain), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal broker settings: %w", err)
	}
	return &cfg, nil
}
