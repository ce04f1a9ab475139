package redisstore

import "github.com/redis/go-redis/v9"

// KEYS[1] email index, KEYS[2] user hash.
// ARGV: id, email, password_hash, verified, extra, created_at.
var createUserScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2],
	'id', ARGV[1],
	'email', ARGV[2],
	'password_hash', ARGV[3],
	'verified', ARGV[4],
	'extra', ARGV[5],
	'created_at', ARGV[6])
return 1
`)

// KEYS[1] user hash. ARGV: field, value.
var updateUserScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// KEYS[1] token hash, KEYS[2] active set for user and purpose.
// ARGV: token_hash, user_id, purpose, issued_at, expires_at, revoke, expire_key_at, token key prefix.
var saveTokenScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
if ARGV[6] == '1' then
	for _, h in ipairs(redis.call('SMEMBERS', KEYS[2])) do
		local k = ARGV[8] .. h
		if redis.call('EXISTS', k) == 1 then
			redis.call('HSET', k, 'consumed', '1')
		end
	end
	redis.call('DEL', KEYS[2])
end
redis.call('HSET', KEYS[1],
	'user_id', ARGV[2],
	'purpose', ARGV[3],
	'issued_at', ARGV[4],
	'expires_at', ARGV[5],
	'consumed', '0')
redis.call('PEXPIREAT', KEYS[1], ARGV[7])
redis.call('SADD', KEYS[2], ARGV[1])
redis.call('PEXPIREAT', KEYS[2], ARGV[7])
return 1
`)

// KEYS[1] token hash. ARGV: purpose, now.
// Returns "ok:<user_id>", "expired" or "missing".
var consumeTokenScript = redis.NewScript(`
local t = redis.call('HMGET', KEYS[1], 'user_id', 'purpose', 'expires_at', 'consumed')
if not t[1] or t[2] ~= ARGV[1] or t[4] ~= '0' then
	return 'missing'
end
if tonumber(ARGV[2]) >= tonumber(t[3]) then
	return 'expired'
end
redis.call('HSET', KEYS[1], 'consumed', '1')
return 'ok:' .. t[1]
`)
