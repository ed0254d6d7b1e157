package events

import (
	"fmt"

	"carrier-gateway/internal/config"

	"github.com/redis/go-redis/v9"
)

// FromConfig selects the emitter backend. rdb is only used for "redis".
func FromConfig(cfg config.EventsConfig, rdb redis.UniversalClient) (Emitter, error) {
	switch cfg.Backend {
	case "", "none":
		return Noop{}, nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("events: redis backend needs a redis client")
		}
		return NewRedisEmitter(rdb, cfg.RedisChannel), nil
	case "kafka":
		return NewKafkaEmitter(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("events: unknown backend %q", cfg.Backend)
	}
}
