package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/mtf-triage/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client *redisclient.Client
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return &RedisEventBus{client: client}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	receivers, err := b.client.Client().Publish(ctx, channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("assessment_id", event.AssessmentID).
		Int64("receivers", receivers).
		Msg("Published assessment event")
	return nil
}

// Close releases the event bus. The Redis client is owned by the caller.
func (b *RedisEventBus) Close() error {
	return nil
}
