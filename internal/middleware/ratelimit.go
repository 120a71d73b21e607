package middleware

import (
	"net/http"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
	"github.com/campuskit/campuskit/internal/ratelimit"
)

// RateLimit returns middleware that enforces a fixed-window limit keyed by
// the request context identity. Rate-limit headers are set on every
// response; denials are rejected with the 429 envelope. Must run after
// Context.
func RateLimit(cfg ratelimit.Config, store ratelimit.CounterStore) func(http.Handler) http.Handler {
	limiter := ratelimit.New(cfg, store)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), apictx.FromContext(r.Context()))
			if err != nil {
				// Headers only make sense for a deny; a store failure has no
				// quota state to report.
				if _, ok := apierror.IsError(err); ok {
					ratelimit.SetHeaders(w, res, cfg.MaxRequests)
				}
				WriteError(w, err)
				return
			}
			ratelimit.SetHeaders(w, res, cfg.MaxRequests)
			next.ServeHTTP(w, r)
		})
	}
}
