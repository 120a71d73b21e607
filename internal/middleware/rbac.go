package middleware

import (
	"net/http"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
)

// RequireRole returns middleware that restricts access to users holding at
// least one of the given roles. Anonymous requests get 401, authenticated
// users without a matching role 403. Must run after Context.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := apictx.FromContext(r.Context())
			if c == nil || c.User == nil {
				WriteError(w, apierror.Unauthorized(""))
				return
			}
			if !apictx.HasAnyRole(c, roles...) {
				WriteError(w, apierror.Forbidden(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
