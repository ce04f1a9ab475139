// Package ratelimiter provides token bucket rate limiting with in-memory and
// Redis stores and an HTTP middleware.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 6 * time.Second,
//	}, ratelimiter.WithKeyPrefix("auth"))
//	if err != nil {
//		return err
//	}
//
//	r.Use(ratelimiter.Middleware(limiter, clientip.GetIP))
//
// A denied request does not drain the bucket further: Remaining reports how
// many tokens short the request was as a negative number.
//
// MemoryStore suits single instances. RedisStore keeps buckets in Redis so
// every replica shares the same limits; each check is one Lua script call.
package ratelimiter
