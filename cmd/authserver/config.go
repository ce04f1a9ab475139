package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/emailauth/pkg/environment"
)

const (
	hasherBcrypt   = "bcrypt"
	hasherArgon2id = "argon2id"

	storageMemory   = "memory"
	storagePostgres = "postgres"
	storageRedis    = "redis"
)

var errInvalidAppConfig = errors.New("invalid app config")

// appConfig is the server-level configuration. Infrastructure configs
// (httpserver, pg, redis, email) are loaded separately.
type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"authserver"`

	ClientURL         string `env:"CLIENT_URL,required"`
	VerificationPath  string `env:"AUTH_VERIFICATION_PATH" envDefault:"/verify-email"`
	PasswordResetPath string `env:"AUTH_PASSWORD_RESET_PATH" envDefault:"/reset-password"`

	ProviderID          string `env:"AUTH_PROVIDER_ID" envDefault:"email"`
	ProviderDisplayName string `env:"AUTH_PROVIDER_DISPLAY_NAME" envDefault:"Email"`

	TokenSecret          string        `env:"AUTH_TOKEN_SECRET,required"`
	VerificationTokenTTL time.Duration `env:"AUTH_VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL        time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	TokenPurgeInterval   time.Duration `env:"AUTH_TOKEN_PURGE_INTERVAL" envDefault:"1h"`

	PasswordHasher string `env:"AUTH_PASSWORD_HASHER" envDefault:"bcrypt"`
	Storage        string `env:"AUTH_STORAGE" envDefault:"memory"`

	SkipEmailVerificationInDev bool          `env:"SKIP_EMAIL_VERIFICATION_IN_DEV" envDefault:"false"`
	AsyncEmailDelivery         bool          `env:"AUTH_ASYNC_EMAIL_DELIVERY" envDefault:"true"`
	EmailDeliveryTimeout       time.Duration `env:"AUTH_EMAIL_DELIVERY_TIMEOUT" envDefault:"30s"`

	RateLimitCapacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RateLimitRefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`

	// TrustedIPHeaders lists proxy headers allowed to carry the client IP.
	TrustedIPHeaders []string `env:"TRUSTED_IP_HEADERS" envSeparator:","`
}

func (c appConfig) validate() error {
	var errs []error
	switch c.PasswordHasher {
	case hasherBcrypt, hasherArgon2id:
	default:
		errs = append(errs, fmt.Errorf("AUTH_PASSWORD_HASHER: unsupported value %q", c.PasswordHasher))
	}
	switch c.Storage {
	case storageMemory, storagePostgres, storageRedis:
	default:
		errs = append(errs, fmt.Errorf("AUTH_STORAGE: unsupported value %q", c.Storage))
	}
	if u, err := url.Parse(c.ClientURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CLIENT_URL: not an absolute URL %q", c.ClientURL))
	}
	if c.RateLimitCapacity <= 0 || c.RateLimitRefillRate <= 0 || c.RateLimitRefillInterval <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_*: values must be positive"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{errInvalidAppConfig}, errs...)...)
	}
	return nil
}

// autoVerifyEmail is true only when skipping is requested and APP_ENV is
// exactly "development". Unknown or empty APP_ENV values never auto-verify.
func (c appConfig) autoVerifyEmail() bool {
	return c.SkipEmailVerificationInDev &&
		strings.EqualFold(strings.TrimSpace(c.Env), environment.Development.String())
}

func (c appConfig) verificationRoute() string {
	return joinURL(c.ClientURL, c.VerificationPath)
}

func (c appConfig) passwordResetRoute() string {
	return joinURL(c.ClientURL, c.PasswordResetPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
