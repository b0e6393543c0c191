package services

import (
	"context"
	"time"

	"handicapper/internal/utils"
	"handicapper/pkg/cache"
)

// CacheService is the slice of the Redis cache the services depend on.
type CacheService interface {
	// Basic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Counters
	Increment(ctx context.Context, key string, expiration time.Duration) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

var _ CacheService = (*cache.RedisCache)(nil)

const (
	followCountTTL = 10 * time.Minute
)

func eventCounterKey(name string, day time.Time) string {
	return "analytics:" + name + ":" + utils.DayKey(day)
}

func followerCountKey(handicapperID string) string {
	return "follows:followers:" + handicapperID
}

func followingCountKey(userID string) string {
	return "follows:following:" + userID
}
