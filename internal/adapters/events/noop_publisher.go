package events

import (
	"context"

	"trip-analytics-service/internal/ports"
)

// NoopPublisher discards batch events. Used when no Redis is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBatchEvent(ctx context.Context, event ports.BatchEvent) error {
	return nil
}

var _ ports.BatchEventPublisher = NoopPublisher{}
