package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/jdangi/portfolio-api/internal/models"
	"github.com/jdangi/portfolio-api/internal/services"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// RateLimitByIP is the coarse per-IP limit for the setup endpoints, built on
// httprate's fixed-window counter.
func RateLimitByIP(requests int, window time.Duration) func(next http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteRateLimited(w, models.CodeRateLimitExceeded,
				"Too many requests. Try again later.", int(window.Seconds()))
		}),
	)
}

// LoginRateLimit guards the login endpoint with the injected limiter, keyed
// by client IP. The limiter backend (memory or Redis) decides; a denial
// carries the seconds until the window resets.
func LoginRateLimit(limiter services.LoginLimiter, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := pkghttp.ExtractClientIP(r, ipConfig)

			decision, err := limiter.Check(r.Context(), ip)
			if err != nil {
				// Limiters fail open themselves; an error here is a contract
				// violation, treat it the same way.
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				pkghttp.WriteRateLimited(w, models.CodeRateLimitExceeded,
					"Too many login attempts. Try again later.", decision.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
