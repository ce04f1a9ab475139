// Package redis connects to Redis with go-redis/v9.
//
// Connect builds a client from Config, which is populated from environment
// variables by caarlos0/env, and waits until the server answers PING.
// Healthcheck adapts any redis.UniversalClient to a readiness probe.
package redis
