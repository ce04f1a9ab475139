package clientip

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/emailauth/pkg/logger"
)

type clientIPContextKey struct{}

func SetIPToContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func GetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// Middleware stores the IP resolved by res in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(SetIPToContext(r.Context(), res.IP(r))))
	})
}

// FromContext is a rate limiter key function reading the IP stored by Middleware.
func FromContext(r *http.Request) string {
	return GetIPFromContext(r.Context())
}

// LoggerExtractor adds the client IP stored by Middleware to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		ip := GetIPFromContext(ctx)
		if ip == "" {
			return slog.Attr{}, false
		}
		return logger.ClientIP(ip), true
	}
}
