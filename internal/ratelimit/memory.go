package ratelimit

import (
	"context"
	"sync"
	"time"
)

// record is one per-key fixed-window counter.
type record struct {
	count       int64
	windowStart time.Time
	lastSeen    time.Time
}

// MemoryStore is a mutex-guarded in-process CounterStore. The
// check-and-increment is a single non-suspending operation under the lock,
// so concurrent requests to the same key never race.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	maxKeys int
	now     func() time.Time
}

// NewMemoryStore creates an in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*record),
		maxKeys: 100000, // cap tracked keys to prevent memory exhaustion
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Call before the store is
// shared; tests use it to advance windows without sleeping.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

// Incr implements CounterStore. A window resets atomically on the first
// check at or past its end; unused quota never carries over.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok {
		if len(s.records) >= s.maxKeys {
			// At capacity: treat the request as over-limit rather than
			// growing the map unboundedly.
			return int64(1 << 30), now, nil
		}
		rec = &record{count: 1, windowStart: now, lastSeen: now}
		s.records[key] = rec
		return 1, now, nil
	}

	if !now.Before(rec.windowStart.Add(window)) {
		rec.count = 1
		rec.windowStart = now
		rec.lastSeen = now
		return 1, now, nil
	}

	rec.count++
	rec.lastSeen = now
	return rec.count, rec.windowStart, nil
}

// Len returns the number of tracked keys (for metrics and testing).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// StartCleanup spawns a goroutine that removes keys idle longer than maxIdle
// every interval. Returns a cancel function that stops it.
func (s *MemoryStore) StartCleanup(interval, maxIdle time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup(maxIdle)
			}
		}
	}()
	return cancel
}

// Cleanup removes keys idle longer than maxIdle in one sweep.
func (s *MemoryStore) Cleanup(maxIdle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	for key, rec := range s.records {
		if rec.lastSeen.Before(cutoff) {
			delete(s.records, key)
		}
	}
}
