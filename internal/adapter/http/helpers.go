// Package http binds the handler pipeline to chi and serves the campus
// catalog API.
package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/campuskit/campuskit/internal/handler"
)

// maxBodyBytes caps request bodies before JSON decoding.
const maxBodyBytes = 1 << 20

// Bind adapts a composed handler to net/http. The body reader is wrapped
// with a size limit; response headers set by the pipeline (rate-limit
// headers included) are written before the status.
func Bind(fn handler.Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := handler.Request{
			Method:     r.Method,
			URL:        r.URL,
			Host:       r.Host,
			RemoteAddr: r.RemoteAddr,
			Header:     r.Header.Get,
			Body: func() ([]byte, error) {
				return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			},
		}
		writeResponse(w, fn(r.Context(), req))
	}
}

func writeResponse(w http.ResponseWriter, resp handler.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if resp.Status == http.StatusNoContent {
		w.WriteHeader(resp.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
