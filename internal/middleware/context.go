// Package middleware provides HTTP middleware for the CampusKit API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
	"github.com/campuskit/campuskit/internal/logger"
)

// Context returns middleware that builds the API request context (tenant,
// optional user, request id, client IP) and stores it for downstream
// handlers. Requests with no resolvable tenant or an invalid token are
// rejected here.
func Context(verifier apictx.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := apictx.Extract(r.Context(), apictx.Input{
				Header:     r.Header.Get,
				Host:       r.Host,
				RemoteAddr: r.RemoteAddr,
			}, verifier)
			if err != nil {
				WriteError(w, err)
				return
			}

			w.Header().Set(apictx.HeaderRequestID, c.RequestID)
			ctx := apictx.WithContext(r.Context(), c)
			ctx = logger.WithRequestID(ctx, c.RequestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns middleware that rejects anonymous requests. It must
// run after Context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := apictx.RequireAuthentication(apictx.FromContext(r.Context())); err != nil {
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteError serializes an error as the API error envelope. Non-taxonomy
// errors are wrapped as internal and logged with their cause.
func WriteError(w http.ResponseWriter, err error) {
	e, ok := apierror.IsError(err)
	if !ok {
		slog.Error("unhandled error at middleware boundary", "error", err)
		e = apierror.Internal("", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status())
	if encodeErr := json.NewEncoder(w).Encode(e.ToEnvelope()); encodeErr != nil {
		slog.Error("failed to write error response", "error", encodeErr)
	}
}
