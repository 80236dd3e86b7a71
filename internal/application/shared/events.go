package shared

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventSource is anything that buffers domain events until it is persisted.
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// PublishEvents drains the buffered events of each source and publishes
// them. Call it after the write has committed; publish failures are logged,
// not returned.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, sources ...EventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
