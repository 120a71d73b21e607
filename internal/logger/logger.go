// Package logger provides structured logging setup for CampusKit.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/campuskit/campuskit/internal/config"
)

// New creates a *slog.Logger from the given Logging config, writing JSON to
// w with a "service" attribute on every record and the request id from the
// context attached automatically. The returned Closer flushes the async
// buffer; it is a no-op in synchronous mode.
func New(cfg config.Logging, w io.Writer) (*slog.Logger, Closer) {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	closer := Closer(nopCloser{})
	if cfg.Async {
		async := NewAsyncHandler(handler, 4096)
		handler = async
		closer = async
	}

	handler = &contextHandler{inner: handler}
	return slog.New(handler).With("service", cfg.Service), closer
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ctxKeyRequestID keys the request id carried on a request context.
type ctxKeyRequestID struct{}

// WithRequestID stamps the request id onto ctx so the contextHandler picks
// it up on every subsequent log call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// RequestID reports the request id stored on ctx, or "" when absent.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

// contextHandler attaches the request id carried in the context to every
// record, so call sites never thread it manually.
type contextHandler struct {
	inner slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	if id := RequestID(ctx); id != "" {
		rec.AddAttrs(slog.String("request_id", id))
	}
	return h.inner.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name)}
}
