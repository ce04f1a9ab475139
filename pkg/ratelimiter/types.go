package ratelimiter

import "time"

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens left; negative when denied
	ResetAt   time.Time // Time of the next refill
}

// Allowed reports whether the request fit into the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request, or 0 if allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Config defines the token bucket configuration.
type Config struct {
	Capacity       int           // Maximum tokens the bucket can hold (burst limit)
	RefillRate     int           // Number of tokens added per refill interval
	RefillInterval time.Duration // How often tokens are added
}

// refill returns the token count after the intervals elapsed since lastRefill
// and the new refill time.
func (c Config) refill(tokens int, lastRefill, now time.Time) (int, time.Time) {
	elapsed := now.Sub(lastRefill)
	if elapsed < c.RefillInterval {
		return tokens, lastRefill
	}
	// Capped so that large gaps cannot overflow.
	intervals := min(int64(elapsed/c.RefillInterval), int64(c.Capacity/c.RefillRate+1))
	tokens += int(intervals) * c.RefillRate
	if tokens >= c.Capacity {
		return c.Capacity, now
	}
	return tokens, lastRefill.Add(time.Duration(intervals) * c.RefillInterval)
}
