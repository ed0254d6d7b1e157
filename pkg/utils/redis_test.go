package utils

import (
	"context"
	"testing"
	"time"
)

func TestRedisOptions_Defaults(t *testing.T) {
	got := RedisOptions{Addr: "localhost:6379"}.clientOptions()
	if got.PoolSize != 20 || got.DialTimeout != 3*time.Second {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.ReadTimeout != 2*time.Second || got.WriteTimeout != 2*time.Second {
		t.Fatalf("unexpected io timeouts: %s/%s", got.ReadTimeout, got.WriteTimeout)
	}
}

func TestRedisOptions_ExplicitValuesWin(t *testing.T) {
	got := RedisOptions{Addr: "r:6379", Password: "pw", DB: 2, PoolSize: 5, IOTimeout: time.Second}.clientOptions()
	if got.Password != "pw" || got.DB != 2 || got.PoolSize != 5 {
		t.Fatalf("explicit values lost: %+v", got)
	}
	if got.ReadTimeout != time.Second || got.WriteTimeout != time.Second {
		t.Fatalf("io timeout not applied: %+v", got)
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisOptions{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
