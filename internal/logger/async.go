package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer flushes and stops a handler that buffers records.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler decouples logging from the request path: records go into a
// buffered channel drained by one goroutine, and are dropped rather than
// blocking when the buffer is full.
type AsyncHandler struct {
	inner   slog.Handler
	ch      chan asyncEntry
	done    *sync.WaitGroup
	dropped *atomic.Int64
}

// asyncEntry carries the record together with the handler that enqueued it,
// so attrs and groups added via WithAttrs/WithGroup survive the channel hop.
type asyncEntry struct {
	rec   slog.Record
	inner slog.Handler
}

// NewAsyncHandler wraps inner with a buffer of the given capacity.
func NewAsyncHandler(inner slog.Handler, capacity int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		ch:      make(chan asyncEntry, capacity),
		done:    &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	h.done.Add(1)
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	defer h.done.Done()
	for e := range h.ch {
		_ = e.inner.Handle(context.Background(), e.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it when the buffer is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.ch <- asyncEntry{rec: rec, inner: h.inner}:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the buffer with a rescoped inner
// handler.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), ch: h.ch, done: h.done, dropped: h.dropped}
}

// WithGroup returns a handler sharing the buffer with a rescoped inner
// handler.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), ch: h.ch, done: h.done, dropped: h.dropped}
}

// DroppedCount returns the number of records dropped so far.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close stops accepting records and waits for the buffer to drain.
func (h *AsyncHandler) Close() {
	close(h.ch)
	h.done.Wait()
}
