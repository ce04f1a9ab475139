// Command authserver serves the email/password auth API.
//
// Configuration is read from environment variables and an optional .env file.
// See appConfig, httpserver.Config, email.Config, pg.Config and redis.Config
// for the variables.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/emailauth/modules/emailauth"
	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/clientip"
	"github.com/dmitrymomot/emailauth/pkg/config"
	"github.com/dmitrymomot/emailauth/pkg/email"
	"github.com/dmitrymomot/emailauth/pkg/environment"
	"github.com/dmitrymomot/emailauth/pkg/httpserver"
	"github.com/dmitrymomot/emailauth/pkg/logger"
	"github.com/dmitrymomot/emailauth/pkg/ratelimiter"
	"github.com/dmitrymomot/emailauth/pkg/requestid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		slog.Error("authserver stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		cfg      appConfig
		httpCfg  httpserver.Config
		emailCfg email.Config
	)
	if err := errors.Join(
		config.Load(&cfg),
		config.Load(&httpCfg),
		config.Load(&emailCfg),
	); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	db, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.close()

	sender, err := newSender(emailCfg, cfg, log)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(db.tokens, cfg.TokenSecret)
	if err != nil {
		return err
	}

	opts := []auth.ServiceOption{
		auth.WithLogger(log),
		auth.WithHasher(newHasher(cfg)),
		auth.WithVerificationTokenTTL(cfg.VerificationTokenTTL),
		auth.WithResetTokenTTL(cfg.ResetTokenTTL),
		auth.WithDeliveryFailureHook(func(ctx context.Context, purpose auth.Purpose, user *auth.User, err error) {
			log.ErrorContext(ctx, "auth email not delivered",
				logger.Event(string(purpose)),
				logger.UserID(user.ID),
				logger.Error(err),
			)
		}),
	}
	if cfg.AsyncEmailDelivery {
		opts = append(opts, auth.WithAsyncDelivery(cfg.EmailDeliveryTimeout))
	}

	autoVerify := cfg.autoVerifyEmail()
	if autoVerify {
		log.Warn("email verification is skipped for new accounts")
	}

	svc, err := auth.NewService(auth.Config{
		From:                     emailCfg.Sender(),
		VerificationClientRoute:  cfg.verificationRoute(),
		PasswordResetClientRoute: cfg.passwordResetRoute(),
		IsEmailAutoVerified:      autoVerify,
	}, db.users, tokens, sender, opts...)
	if err != nil {
		return err
	}
	defer svc.Wait()

	limiter, err := ratelimiter.NewBucket(db.limits, ratelimiter.Config{
		Capacity:       cfg.RateLimitCapacity,
		RefillRate:     cfg.RateLimitRefillRate,
		RefillInterval: cfg.RateLimitRefillInterval,
	}, ratelimiter.WithKeyPrefix("auth"))
	if err != nil {
		return err
	}

	provider := emailauth.NewProvider(svc,
		emailauth.WithID(cfg.ProviderID),
		emailauth.WithDisplayName(cfg.ProviderDisplayName),
		emailauth.WithLogger(log),
		emailauth.WithMiddleware(ratelimiter.Middleware(limiter,
			ratelimiter.Composite(clientip.FromContext, ratelimiter.Route),
			ratelimiter.WithMiddlewareLogger(log),
		)),
	)

	janitorCtx, cancelJanitor := context.WithCancel(ctx)
	defer cancelJanitor()
	go purgeExpiredTokens(janitorCtx, db.tokens, cfg.TokenPurgeInterval, log)

	router := newRouter(cfg, log, db.checks, provider)

	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string) {
			log.Info("authserver listening",
				slog.String("addr", addr),
				slog.String("storage", cfg.Storage),
			)
		}),
	)
	return srv.Run(ctx, router)
}

func newRouter(cfg appConfig, log *slog.Logger, checks []httpserver.Check, providers ...emailauth.Mountable) http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.NewResolver(cfg.TrustedIPHeaders...).Middleware,
	)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, checks...))
	r.Mount("/", emailauth.Router(providers...))

	return r
}

func newSender(emailCfg email.Config, cfg appConfig, log *slog.Logger) (email.EmailSender, error) {
	if emailCfg.PostmarkEnabled() {
		return email.NewPostmarkClient(emailCfg)
	}
	if environment.Parse(cfg.Env).IsProduction() {
		log.Warn("postmark is not configured, emails are written to disk",
			slog.String("dir", emailCfg.DevOutputDir),
		)
	}
	return email.NewDevSender(emailCfg.DevOutputDir), nil
}

func newHasher(cfg appConfig) auth.PasswordHasher {
	if cfg.PasswordHasher == hasherArgon2id {
		return auth.NewArgon2idHasher()
	}
	return auth.NewBcryptHasher()
}
