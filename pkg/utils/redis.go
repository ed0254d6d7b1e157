package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions is the subset of client settings the gateway exposes.
// Zero values fall back to the defaults below.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	PoolSize    int
	DialTimeout time.Duration
	// IOTimeout applies to both reads and writes.
	IOTimeout   time.Duration
	PingTimeout time.Duration
}

func (o RedisOptions) clientOptions() *redis.Options {
	opt := &redis.Options{
		Addr:            o.Addr,
		Password:        o.Password,
		DB:              o.DB,
		PoolSize:        o.PoolSize,
		DialTimeout:     o.DialTimeout,
		ReadTimeout:     o.IOTimeout,
		WriteTimeout:    o.IOTimeout,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
	}
	if opt.PoolSize <= 0 {
		opt.PoolSize = 20
	}
	if opt.DialTimeout <= 0 {
		opt.DialTimeout = 3 * time.Second
	}
	if o.IOTimeout <= 0 {
		opt.ReadTimeout = 2 * time.Second
		opt.WriteTimeout = 2 * time.Second
	}
	return opt
}

// OpenRedis connects and PINGs. The returned client is owned by the caller.
func OpenRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	if o.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	rdb := redis.NewClient(o.clientOptions())

	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", o.Addr, err)
	}
	return rdb, nil
}
