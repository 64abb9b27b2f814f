package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"todo_app/internal/platform/config"
)

// Connect builds and pings the Redis client backing the auth rate limiter.
func Connect(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}
