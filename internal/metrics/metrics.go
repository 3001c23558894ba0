// Package metrics defines the Prometheus collectors of the broadcast gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Channel authorization metrics
var (
	// AuthRequestsTotal tracks channel authorization requests by result.
	// result: "granted", "rejected", "error"
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_auth_requests_total",
			Help: "Channel authorization requests by result",
		},
		[]string{"result"},
	)
)

// Broadcast metrics
var (
	// EventsPublishedTotal tracks events published by event name.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_events_published_total",
			Help: "Events published to the broker by event name",
		},
		[]string{"event"},
	)

	// EventsDroppedTotal tracks events dropped by event name and reason.
	// reason: "disabled", "publish_error"
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_events_dropped_total",
			Help: "Events dropped by event name and reason",
		},
		[]string{"event", "reason"},
	)

	// PublishDuration tracks broker trigger call latency in seconds.
	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_publish_duration_seconds",
			Help:    "Broker trigger call duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

// Client resolver metrics
var (
	// ClientRebuildsTotal tracks broker client rebuilds caused by config
	// fingerprint changes.
	ClientRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_client_rebuilds_total",
			Help: "Broker client rebuilds caused by config changes",
		},
	)
)

// Settings cache metrics
var (
	// SettingsCacheRedisHits tracks broker settings served from Redis.
	SettingsCacheRedisHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_settings_cache_redis_hits_total",
			Help: "Broker settings lookups served from the Redis cache",
		},
	)

	// SettingsCachePostgresHits tracks broker settings served from Postgres.
	SettingsCachePostgresHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_settings_cache_postgres_hits_total",
			Help: "Broker settings lookups that fell through to PostgreSQL",
		},
	)
)

// Circuit breaker metrics
var (
	// PublishBreakerStateChanges tracks publish circuit breaker transitions.
	PublishBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_circuit_breaker_state_changes_total",
			Help: "Publish circuit breaker state transitions by new state",
		},
		[]string{"state"},
	)

	// PublishBreakerState tracks the current publish circuit breaker state
	// (0=closed, 1=half-open, 2=open).
	PublishBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "publish_circuit_breaker_state",
			Help: "Current publish circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
