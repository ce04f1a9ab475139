package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/auth/pgstore"
	"github.com/dmitrymomot/emailauth/pkg/auth/redisstore"
	"github.com/dmitrymomot/emailauth/pkg/config"
	"github.com/dmitrymomot/emailauth/pkg/httpserver"
	"github.com/dmitrymomot/emailauth/pkg/logger"
	"github.com/dmitrymomot/emailauth/pkg/pg"
	"github.com/dmitrymomot/emailauth/pkg/ratelimiter"
	"github.com/dmitrymomot/emailauth/pkg/redis"
)

// backend bundles the stores selected by AUTH_STORAGE.
type backend struct {
	users   auth.UserRepository
	tokens  auth.TokenStore
	limits  ratelimiter.Store
	checks  []httpserver.Check
	closers []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg appConfig, log *slog.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Storage {
	case storagePostgres:
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if err := pgstore.Migrate(ctx, pool, pgCfg, log); err != nil {
			b.close()
			return nil, err
		}
		store := pgstore.New(pool)
		b.users, b.tokens = store, store
		b.checks = append(b.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})

		mem := ratelimiter.NewMemoryStore()
		b.limits = mem
		b.closers = append(b.closers, mem.Close)

	case storageRedis:
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", logger.Error(err))
			}
		})
		store := redisstore.New(client)
		b.users, b.tokens = store, store
		b.limits = ratelimiter.NewRedisStore(client)
		b.checks = append(b.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})

	case storageMemory:
		log.Warn("using in-memory storage, accounts are lost on restart")
		store := auth.NewMemoryStorage()
		b.users, b.tokens = store, store

		mem := ratelimiter.NewMemoryStore()
		b.limits = mem
		b.closers = append(b.closers, mem.Close)

	default:
		return nil, fmt.Errorf("%w: storage %q", errInvalidAppConfig, cfg.Storage)
	}

	return b, nil
}

// purgeExpiredTokens deletes expired tokens on every tick until ctx is done.
// Stores that expire tokens on their own are skipped.
func purgeExpiredTokens(ctx context.Context, store auth.TokenStore, interval time.Duration, log *slog.Logger) {
	purger, ok := store.(auth.ExpiredTokenPurger)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := purger.DeleteExpiredTokens(ctx, now)
			if err != nil {
				log.ErrorContext(ctx, "failed to purge expired tokens", logger.Error(err))
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "purged expired tokens", slog.Int64("count", n))
			}
		}
	}
}
