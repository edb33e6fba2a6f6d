// Package cache opens the Redis client backing request idempotency.
package cache

import (
	"context"
	"time"

	"contentops-workflow/internal/logging"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects and pings once; the caller owns Close.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  pingTimeout,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	log := logging.Component("cache")
	log.Info().Str("addr", addr).Int("db", db).Msg("redis: connected")
	return r, nil
}
