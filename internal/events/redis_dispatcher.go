package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisDispatcher decorates another dispatcher by mirroring every event
// onto a Redis channel so out-of-process consumers can follow along.
// Publishing to Redis is best effort: failures are logged and the local
// delivery still happens.
type redisDispatcher struct {
	inner   Dispatcher
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisDispatcher wraps inner with a Redis PUBLISH on the given channel.
func NewRedisDispatcher(inner Dispatcher, client *redis.Client, channel string, logger *zap.Logger) Dispatcher {
	return &redisDispatcher{
		inner:   inner,
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Publish mirrors the event to Redis, then delegates to the inner dispatcher.
func (d *redisDispatcher) Publish(ctx context.Context, event Event) error {
	if payload, err := json.Marshal(event); err != nil {
		d.logger.Warn("marshal event for redis", zap.String("event_type", string(event.Type)), zap.Error(err))
	} else if err := d.client.Publish(ctx, d.channel, payload).Err(); err != nil {
		d.logger.Warn("publish event to redis",
			zap.String("channel", d.channel),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return d.inner.Publish(ctx, event)
}

// Subscribe registers the handler with the inner dispatcher.
func (d *redisDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.inner.Subscribe(eventType, handler)
}
