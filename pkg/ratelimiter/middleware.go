package ratelimiter

import (
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/emailauth/handler"
	"github.com/dmitrymomot/emailauth/pkg/logger"
)

// maxKeyLength bounds composite keys; longer ones are hashed.
const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request.
type KeyFunc func(r *http.Request) string

// Composite joins the non-empty keys of several key functions.
// Keys longer than 64 bytes are replaced by their FNV-1a hash.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// Route keys by request method and path, so each endpoint gets its own bucket.
func Route(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

type middlewareConfig struct {
	denied  http.Handler
	onError func(w http.ResponseWriter, r *http.Request, err error)
	logger  *slog.Logger
}

type MiddlewareOption func(*middlewareConfig)

// WithDeniedHandler replaces the default JSON 429 response.
// Rate limit headers are already set when it runs.
func WithDeniedHandler(h http.Handler) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.denied = h
	}
}

// WithErrorHandler is called when the store fails. The default lets the
// request through.
func WithErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.onError = fn
	}
}

// WithMiddlewareLogger logs store failures that are let through.
func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware enforces limiter per key. Requests with an empty key are not limited.
func Middleware(limiter RateLimiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		denied: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = handler.JSONError(handler.ErrTooManyRequests).Render(w, r)
		}),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				if cfg.onError != nil {
					cfg.onError(w, r, err)
					return
				}
				cfg.logger.WarnContext(r.Context(), "rate limiter unavailable, request allowed",
					logger.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				// Rounded up so clients never retry early.
				secs := int((result.RetryAfter() + 999_999_999) / 1_000_000_000)
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				cfg.denied.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
