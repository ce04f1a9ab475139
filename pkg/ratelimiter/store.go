package ratelimiter

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
type Store interface {
	// ConsumeTokens takes n tokens if the bucket holds at least n.
	// Otherwise nothing is taken and remaining is the negative shortfall.
	// n == 0 only refreshes and reports the bucket.
	ConsumeTokens(ctx context.Context, key string, n int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the rate limit state for the given key.
	Reset(ctx context.Context, key string) error
}
