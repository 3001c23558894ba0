package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/adapter/httpserver"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/adapter/postgres"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/adapter/pusherapi"
	redisadapter "github.com/disruption-hub/vendure-boilerplate-sub008/internal/adapter/redis"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/gateway"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/config"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/crypto"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/logging"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	client, err := redisadapter.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisadapter.Ping(ctx, client); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func setupPublisherFactory(cfg *config.Config) gateway.PublisherFactory {
	var breaker circuitbreaker.CircuitBreaker[any]
	if cfg.PublishFailurePolicy == config.PolicyBreak {
		breaker = pusherapi.NewPublishBreaker()
	}

	return func(bc domain.BrokerConfig) domain.EventPublisher {
		return pusherapi.New(bc, pusherapi.Options{
			Timeout: cfg.PublishTimeout,
			Breaker: breaker,
		})
	}
}

func runGracefulShutdown(srv *httpserver.Server, cancelSubscriber context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelSubscriber()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "tenant_id", cfg.TenantID, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	cacheCipher, err := crypto.NewAesGcmService(cfg.SettingsCacheEncryptionKey)
	if err != nil {
		slog.Error("Failed to create settings cache cipher", "error", err)
		os.Exit(1)
	}

	// Config provider chain: postgres → redis cache → in-process TTL cache
	settingsRepo := postgres.NewSettingsRepo(pool, cfg.TenantID)
	settingsCache := redisadapter.NewSettingsCacheRepo(redisClient, settingsRepo, cfg.TenantID, cacheCipher)
	settingsProvider := gateway.NewCachedProvider(settingsCache, cfg.BrokerSettingsTTL, clock)

	resolver := gateway.NewResolver(settingsProvider, setupPublisherFactory(cfg))
	authorizer := gateway.NewAuthorizer(resolver)

	// Credential rotations invalidate both cache layers without waiting
	// for the TTL.
	subscriberCtx, cancelSubscriber := context.WithCancel(context.Background())
	defer cancelSubscriber()
	subscriber := redisadapter.NewSettingsInvalidationSubscriber(
		redisClient, settingsCache, cfg.TenantID, settingsProvider.Invalidate)
	go subscriber.Start(subscriberCtx)

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error { return redisadapter.Ping(ctx, redisClient) }},
	}

	srv := httpserver.NewServer(cfg, authorizer, healthChecks)

	done := runGracefulShutdown(srv, cancelSubscriber)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
