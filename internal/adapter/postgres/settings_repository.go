package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
)

// SettingsRepo reads and writes the broker settings of one deployment's
// tenant. The read path implements domain.BrokerConfigProvider.
type SettingsRepo struct {
	pool     *pgxpool.Pool
	tenantID string
}

func NewSettingsRepo(pool *pgxpool.Pool, tenantID string) *SettingsRepo {
	return &SettingsRepo{pool: pool, tenantID: tenantID}
}

func (r *SettingsRepo) GetBrokerConfig(ctx context.Context) (*domain.BrokerConfig, error) {
	const query = `
		SELECT app_id, broker_key, broker_secret, public_host, public_port, use_tls, enabled
		FROM tenant_broker_settings
		WHERE tenant_id = $1`

	var cfg domain.BrokerConfig
	err := r.pool.QueryRow(ctx, query, r.tenantID).Scan(
		&cfg.AppID, &cfg.Key, &cfg.Secret, &cfg.PublicHost, &cfg.PublicPort, &cfg.UseTLS, &cfg.Enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broker settings: %w", err)
	}

	return &cfg, nil
}

// Upsert stores the broker settings for the tenant. Used by administrative
// tooling; the gateway itself only reads.
func (r *SettingsRepo) Upsert(ctx context.Context, cfg domain.BrokerConfig) error {
	const query = `
		INSERT INTO tenant_broker_settings (tenant_id, app_id, broker_key, broker_secret, public_host, public_port, use_tls, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			app_id = EXCLUDED.app_id,
			broker_key = EXCLUDED.broker_key,
			broker_secret = EXCLUDED.broker_secret,
			public_host = EXCLUDED.public_host,
			public_port = EXCLUDED.public_port,
			use_tls = EXCLUDED.use_tls,
			enabled = EXCLUDED.enabled,
			updated_at = now()`

	_, err := r.pool.Exec(ctx, query,
		r.tenantID, cfg.AppID, cfg.Key, cfg.Secret, cfg.PublicHost, cfg.PublicPort, cfg.UseTLS, cfg.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert broker settings: %w", err)
	}
	return nil
}
