package pusherapi

import (
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/metrics"
)

const (
	breakerFailureRate   = 0.6
	breakerMinRequests   = 5
	breakerWindow        = 10 * time.Second
	breakerOpenDelay     = 30 * time.Second
	breakerSuccessToHeal = 1
)

// NewPublishBreaker builds the circuit breaker gating broker trigger calls.
// Routine publish failures stay at warn severity; a breaker transition means
// the broker is down as a whole and is logged at error severity so it can
// be alerted on.
func NewPublishBreaker() circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(breakerFailureRate, breakerMinRequests, breakerWindow).
		WithDelay(breakerOpenDelay).
		WithSuccessThreshold(breakerSuccessToHeal).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			logFn := slog.Warn
			if e.NewState == circuitbreaker.OpenState {
				logFn = slog.Error
			}
			logFn("Publish circuit breaker state changed",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)

			metrics.PublishBreakerStateChanges.WithLabelValues(e.NewState.String()).Inc()
			metrics.PublishBreakerState.Set(stateToFloat(e.NewState))
		}).
		Build()
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}
