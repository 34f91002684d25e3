package common

import (
	"context"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PublishEvents hands each aggregate's pending events to publisher and clears them.
// It runs after the write has been committed, so failures are logged and not returned.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil && logger != nil {
			logger.Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err))
		}
	}
}

// LoggerOrNop returns logger, or a no-op logger when it is nil
func LoggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
