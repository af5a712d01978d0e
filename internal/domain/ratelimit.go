package domain

import "context"

// RateLimiter bounds payment-order attempts per user over a sliding window.
// Counters live in a shared store so the limit holds across instances.
type RateLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}
