package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/campuskit/campuskit/internal/apierror"
)

// MaxInFlight caps the number of concurrently served requests with a
// weighted semaphore. Requests beyond the cap fail fast with 503 instead of
// queueing, so saturation stays visible to callers.
func MaxInFlight(limit int64) func(http.Handler) http.Handler {
	sem := semaphore.NewWeighted(limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sem.TryAcquire(1) {
				WriteError(w, apierror.New(apierror.CodeServiceUnavailable, "server is at capacity"))
				return
			}
			defer sem.Release(1)
			next.ServeHTTP(w, r)
		})
	}
}
