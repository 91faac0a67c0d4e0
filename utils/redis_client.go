package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/programeryk/stateful-engagement-backend/config"
)

// Redis here is an accelerator, never a source of truth: it holds the
// revoked-token set and the rendered tool catalog. Every caller has a
// fallback path, so operations get short timeouts and failures degrade
// instead of erroring out.
const redisOpTimeout = 2 * time.Second

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the shared client, connecting on first use.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Get()
		redisClient = redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  redisOpTimeout,
			WriteTimeout: redisOpTimeout,
		})
		ctx, cancel := redisOpContext()
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil && Sugar != nil {
			Sugar.Warnf("redis unreachable, in-memory fallbacks active: %v", err)
		}
	})
	return redisClient
}

// redisOpContext bounds a single redis operation.
func redisOpContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}
