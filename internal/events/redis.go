package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisEmitter publishes events as JSON on a pub/sub channel that the
// client-facing realtime service subscribes to.
type RedisEmitter struct {
	rdb     redis.UniversalClient
	channel string
}

func NewRedisEmitter(rdb redis.UniversalClient, channel string) *RedisEmitter {
	if channel == "" {
		channel = "gateway.events"
	}
	return &RedisEmitter{rdb: rdb, channel: channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := e.rdb.Publish(ctx, e.channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", e.channel, err)
	}
	return nil
}
