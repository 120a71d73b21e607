package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/campuskit/campuskit/internal/config"
	"github.com/campuskit/campuskit/internal/logger"
)

func TestLevelThreshold(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{"debug", true, true, true},
		{"DEBUG", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"warning", false, false, true},
		{"error", false, false, true},
		{"", false, true, true},
		{"bogus", false, true, true},
	}
	ctx := context.Background()
	for _, tt := range tests {
		log, closer := logger.New(config.Logging{Level: tt.level}, io.Discard)
		closer.Close()
		if got := log.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
			t.Errorf("level %q: debug enabled = %v, want %v", tt.level, got, tt.wantDebug)
		}
		if got := log.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
			t.Errorf("level %q: info enabled = %v, want %v", tt.level, got, tt.wantInfo)
		}
		if got := log.Enabled(ctx, slog.LevelError); got != tt.wantError {
			t.Errorf("level %q: error enabled = %v, want %v", tt.level, got, tt.wantError)
		}
	}
}

func TestRequestIDAttachedFromContext(t *testing.T) {
	var buf bytes.Buffer
	log, closer := logger.New(config.Logging{Service: "campuskit-api"}, &buf)
	defer closer.Close()

	ctx := logger.WithRequestID(context.Background(), "req_abc123")
	log.InfoContext(ctx, "hello")

	rec := decodeRecord(t, buf.Bytes())
	if rec["request_id"] != "req_abc123" {
		t.Errorf("request_id = %v", rec["request_id"])
	}
	if rec["service"] != "campuskit-api" {
		t.Errorf("service = %v", rec["service"])
	}

	buf.Reset()
	log.Info("no context")
	rec = decodeRecord(t, buf.Bytes())
	if _, present := rec["request_id"]; present {
		t.Error("request_id attached without one in context")
	}
}

func TestAsyncModeKeepsServiceAttr(t *testing.T) {
	// Attrs added via Logger.With are bound per enqueuing handler; the drain
	// goroutine must write through that handler, not the bare root one.
	buf := &syncBuffer{}
	log, closer := logger.New(config.Logging{Service: "campuskit-api", Async: true}, buf)

	ctx := logger.WithRequestID(context.Background(), "req_async1")
	log.InfoContext(ctx, "hello")
	closer.Close()

	rec := decodeRecord(t, buf.Bytes())
	if rec["service"] != "campuskit-api" {
		t.Errorf("service = %v, want campuskit-api; record = %v", rec["service"], rec)
	}
	if rec["request_id"] != "req_async1" {
		t.Errorf("request_id = %v; record = %v", rec["request_id"], rec)
	}
}

func TestAsyncHandlerWithAttrsAndGroup(t *testing.T) {
	buf := &syncBuffer{}
	h := logger.NewAsyncHandler(slog.NewJSONHandler(buf, nil), 8)
	log := slog.New(h).With("tenant", "acme").WithGroup("req").With("method", "GET")

	log.Info("entry")
	h.Close()

	rec := decodeRecord(t, buf.Bytes())
	if rec["tenant"] != "acme" {
		t.Errorf("tenant = %v; record = %v", rec["tenant"], rec)
	}
	group, _ := rec["req"].(map[string]any)
	if group["method"] != "GET" {
		t.Errorf("req.method = %v; record = %v", group["method"], rec)
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	buf := &syncBuffer{}
	h := logger.NewAsyncHandler(slog.NewJSONHandler(buf, nil), 64)
	log := slog.New(h)

	for range 10 {
		log.Info("entry")
	}
	h.Close()

	if got := buf.Lines(); got != 10 {
		t.Errorf("records written = %d, want 10", got)
	}
	if h.DroppedCount() != 0 {
		t.Errorf("dropped = %d, want 0", h.DroppedCount())
	}
}

func TestAsyncHandlerDropsWhenFull(t *testing.T) {
	// An inner handler that blocks until released forces the buffer to fill.
	release := make(chan struct{})
	inner := &blockingHandler{release: release}
	h := logger.NewAsyncHandler(inner, 1)
	log := slog.New(h)

	for range 50 {
		log.Info("entry")
	}
	close(release)
	h.Close()

	if h.DroppedCount() == 0 {
		t.Error("expected drops with a full buffer, got none")
	}
}

func decodeRecord(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal record %q: %v", data, err)
	}
	return rec
}

// syncBuffer guards a bytes.Buffer against the async drain goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Count(b.buf.Bytes(), []byte("\n"))
}

type blockingHandler struct {
	release chan struct{}
	once    sync.Once
}

func (b *blockingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (b *blockingHandler) Handle(context.Context, slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	b.once.Do(func() {
		select {
		case <-b.release:
		case <-time.After(5 * time.Second):
		}
	})
	return nil
}

func (b *blockingHandler) WithAttrs([]slog.Attr) slog.Handler { return b }
func (b *blockingHandler) WithGroup(string) slog.Handler      { return b }
