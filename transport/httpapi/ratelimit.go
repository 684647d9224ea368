package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/rate"
	"github.com/MrEthical07/otpauth/middleware"
)

// Limiter decides whether one more request from key fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (rate.Decision, error)
}

// limitByIP applies the per-client budget. A store failure lets the request
// through and is logged.
func limitByIP(l Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := middleware.ClientIP(r)
			d, err := l.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("gateway rate limiter unavailable", zap.String("ip", ip), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(int(d.ResetIn.Seconds())))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(int(d.ResetIn.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{
					Status:  "error",
					Message: "Too many requests, please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
