package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Amitsjoysm/payment-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter counts order attempts per user in a Redis sorted set.
// The window lives in a shared store, so the limit holds across service
// instances. The attempt is recorded before it is judged: concurrent
// requests can over-count, never under-count.
type SlidingWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewSlidingWindowLimiter(cfg *config.Redis, limit int, window time.Duration) *SlidingWindowLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &SlidingWindowLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	key := fmt.Sprintf("payment:orders:%s", userID)
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter pipeline: %w", err)
	}

	return count.Val() <= int64(l.limit), nil
}

func (l *SlidingWindowLimiter) Close() error {
	return l.client.Close()
}
