package storage

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultBreakerSettings opens after 5 consecutive failures, or a 60% failure
// rate over at least 10 requests, and probes again after 30s.
func DefaultBreakerSettings(name string, logger *zap.Logger) gobreaker.Settings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// a missing object is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || isNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}
