package middleware

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	"snipetrack-backend/pkg/auth"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
)

// RateLimit limits requests per client IP. The limiter may fail open; a
// limiter error is logged but never turns into a request failure on its own.
func RateLimit(limiter auth.RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter error", zap.Error(err), zap.String("key", key))
			}
			if !allowed {
				common.RespondError(w, &apperrors.AppError{
					Type:       "RATE_LIMITED",
					Message:    "too many requests",
					HTTPStatus: http.StatusTooManyRequests,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
