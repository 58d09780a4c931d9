// File: utils/cache.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chelmassage/config"

	"github.com/go-redis/redis/v8"
)

// ErrRedisNotConfigured is returned when REDIS_ADDR is empty.
var ErrRedisNotConfigured = errors.New("redis is not configured")

var (
	// IdempotencyClient backs replay of completed bookings.
	IdempotencyClient *redis.Client
)

// NewRedisClient connects to the configured Redis server on the given DB and pings it.
func NewRedisClient(db int) (*redis.Client, error) {
	if config.AppConfig.RedisAddr == "" {
		return nil, ErrRedisNotConfigured
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}

// InitIdempotencyCache initializes the Redis client used for idempotent booking replay.
func InitIdempotencyCache() error {
	client, err := NewRedisClient(config.AppConfig.RedisIdempotencyDB)
	if err != nil {
		return err
	}
	IdempotencyClient = client
	return nil
}

// GetIdempotencyClient returns the Redis client for idempotency keys, or nil when Redis is unavailable.
func GetIdempotencyClient() *redis.Client {
	return IdempotencyClient
}
