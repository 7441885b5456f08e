package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// initRedis initializes the Redis connection
func initRedis(redisURL string) error {
	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	redisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	return nil
}

func balanceCacheKey(userID int64) string {
	return fmt.Sprintf("balances:%d", userID)
}

// invalidateBalanceCache drops the per-currency balance cache after a ledger
// mutation. Best effort; the cache entry expires on its own anyway.
func invalidateBalanceCache(ctx context.Context, userID int64) {
	if redisClient != nil {
		redisClient.Del(ctx, balanceCacheKey(userID))
	}
}
