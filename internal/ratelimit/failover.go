package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/campuskit/campuskit/internal/resilience"
)

// FailoverStore protects a remote CounterStore with a circuit breaker and
// falls back to a local store while the remote is unhealthy. Quota counted
// locally during an outage is per-process, which over-admits briefly; that
// beats failing every request closed.
type FailoverStore struct {
	remote  CounterStore
	local   CounterStore
	breaker *resilience.Breaker
}

// NewFailoverStore wraps remote with the given breaker, failing over to
// local on errors or an open circuit.
func NewFailoverStore(remote, local CounterStore, breaker *resilience.Breaker) *FailoverStore {
	return &FailoverStore{remote: remote, local: local, breaker: breaker}
}

// Incr implements CounterStore.
func (s *FailoverStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	var count int64
	var start time.Time

	err := s.breaker.Execute(func() error {
		var err error
		count, start, err = s.remote.Incr(ctx, key, window)
		return err
	})
	if err == nil {
		return count, start, nil
	}

	slog.Warn("rate limit remote store unavailable, using local counters",
		"error", err,
	)
	return s.local.Incr(ctx, key, window)
}
