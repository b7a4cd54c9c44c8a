package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trip-analytics-service/internal/ports"
)

// RedisEventPublisher publishes one message per completed batch on a
// Redis pub/sub channel. Consumers (e.g. an HTTP push stream) subscribe
// to the same channel out of band.
type RedisEventPublisher struct {
	Client  *redis.Client
	Channel string
}

func NewRedisEventPublisher(client *redis.Client, channel string) *RedisEventPublisher {
	return &RedisEventPublisher{Client: client, Channel: channel}
}

func (p *RedisEventPublisher) PublishBatchEvent(ctx context.Context, event ports.BatchEvent) error {
	if p.Client == nil {
		return errors.New("redis event publisher: client is nil")
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish batch event: encode: %w", err)
	}

	if err := p.Client.Publish(ctx, p.Channel, raw).Err(); err != nil {
		return fmt.Errorf("publish batch event: publish to %q: %w", p.Channel, err)
	}

	return nil
}

var _ ports.BatchEventPublisher = (*RedisEventPublisher)(nil)
