package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// KeyFunc derives the limiter key for a request. The default keys by
// client address plus operation name so that independent operations and
// clients get independent budgets.
type KeyFunc func(r *http.Request, operation string) string

func DefaultKey(r *http.Request, operation string) string {
	return clientIP(r) + ":" + operation
}

// Middleware guards a route with the limiter. A nil limiter disables
// rate limiting entirely (the limiter is a pluggable policy, not a
// hardwired part of the creation path).
func Middleware(l *Limiter, operation string, keyFn KeyFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = DefaultKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFn(r, operation)
			if !l.Allow(key) {
				logger.Warn("Rate limit exceeded",
					zap.String("key", key),
					zap.String("operation", operation),
				)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
