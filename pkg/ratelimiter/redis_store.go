package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] bucket hash.
// ARGV: now_ms, n, capacity, refill_rate, refill_interval_ms, ttl_ms.
// Returns {remaining, reset_at_ms}.
var consumeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local n = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local rate = tonumber(ARGV[4])
local interval = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

local elapsed = now - last
if elapsed >= interval then
	local intervals = math.min(math.floor(elapsed / interval), math.floor(capacity / rate) + 1)
	tokens = tokens + intervals * rate
	if tokens >= capacity then
		tokens = capacity
		last = now
	else
		last = last + intervals * interval
	end
end

local remaining
if tokens < n then
	remaining = tokens - n
else
	tokens = tokens - n
	remaining = tokens
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill', last)
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return {remaining, last + interval}
`)

// RedisStore keeps buckets in Redis hashes shared by all replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

type RedisStoreOption func(*RedisStore)

// WithRedisKeyPrefix sets the key prefix. Default "ratelimit:".
func WithRedisKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithRedisClock overrides time.Now.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		s.now = now
	}
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, n int, config Config) (int, time.Time, error) {
	// A bucket untouched for long enough to refill completely carries no state.
	full := time.Duration(config.Capacity/config.RefillRate+1) * config.RefillInterval

	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		s.now().UnixMilli(),
		n,
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		full.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script result %v", ErrStoreUnavailable, res)
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
