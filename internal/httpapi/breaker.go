package httpapi

import (
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"dionysia/internal/logging"
)

// newBreaker opens after five consecutive failures and probes again after a minute.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerHalfOpenProbe,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			attrs := []logging.Attr{
				logging.String("breaker", name),
				logging.String("from", stateToString(from)),
				logging.String("to", stateToString(to)),
			}
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(logger, "circuit breaker opened", "circuit_open",
					append(attrs,
						logging.String(logging.FieldErrorHint, "the service failed repeatedly; check that it is reachable"),
						logging.String(logging.FieldImpact, "remaining requests to this service are skipped"),
					)...)
				return
			}
			logger.Info("circuit breaker state change", logging.Args(attrs...)...)
		},
	})
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
