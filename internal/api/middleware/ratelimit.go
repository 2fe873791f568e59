package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/futig/visa-interview/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var rateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Name: "http_rate_limited_requests_total",
	Help: "Requests rejected by the per-user rate limiter.",
})

// RateLimiter keeps a token bucket per authenticated user.
// Buckets of users idle longer than the TTL are dropped by the cache janitor.
type RateLimiter struct {
	limiters *gocache.Cache
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerMinute, burst int, idleTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: gocache.New(idleTTL, idleTTL),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiterFor(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if cached, ok := rl.limiters.Get(userID); ok {
		limiter = cached.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	// refresh expiry on every request
	rl.limiters.SetDefault(userID, limiter)

	return limiter
}

// Handler must run after Auth; requests without a user pass through
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := UserID(r.Context())
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		reservation := rl.limiterFor(userID).Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			rateLimited.Inc()
			ctxzap.Warn(r.Context(), "rate limit exceeded", zap.Duration("retry_after", delay))

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			response.Error(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}
