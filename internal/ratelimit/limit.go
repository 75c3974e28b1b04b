package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/functionland/blox-wizard/internal/api"
)

var ErrRateLimited = errors.New("too many requests")

// Limit waits for one token. A reservation that would wait longer than maxWait
// is cancelled and the request rejected; maxWait <= 0 waits without bound.
func Limit(ctx context.Context, limiter *rate.Limiter, maxWait time.Duration) error {
	r := limiter.Reserve()
	if !r.OK() {
		return ErrRateLimited
	}
	d := r.Delay()
	if d == 0 {
		return nil
	}
	if maxWait > 0 && d > maxWait {
		r.Cancel()
		return ErrRateLimited
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Middleware throttles every request through one shared limiter.
func Middleware(limiter *rate.Limiter, maxWait time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Limit(r.Context(), limiter, maxWait); err != nil {
				w.Header().Set("Retry-After", "1")
				api.WriteError(w, http.StatusTooManyRequests, ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// New builds a limiter from a per-second rate; a non-positive rate disables limiting.
func New(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
