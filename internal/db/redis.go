package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commune-social/commune/internal/config"
)

// NewRedisClient creates a Redis client and verifies the connection with a ping.
// Returns nil when Redis is disabled in the configuration; callers treat a nil
// client as "no cache".
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
