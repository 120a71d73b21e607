package redisrate

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Requires a running Redis; set CAMPUSKIT_TEST_REDIS_ADDR to enable.
func testStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("CAMPUSKIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CAMPUSKIT_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "campuskit-test")
}

func TestIncrCountsWithinWindow(t *testing.T) {
	s := testStore(t)
	key := "rl:acme:user:" + uuid.NewString()

	var start time.Time
	for i := int64(1); i <= 3; i++ {
		count, windowStart, err := s.Incr(context.Background(), key, time.Minute)
		if err != nil {
			t.Fatalf("Incr %d: %v", i, err)
		}
		if count != i {
			t.Fatalf("count = %d, want %d", count, i)
		}
		if i == 1 {
			start = windowStart
		} else if !windowStart.Equal(start) {
			t.Errorf("window start moved: %v -> %v", start, windowStart)
		}
	}
}

func TestIncrWindowExpiry(t *testing.T) {
	s := testStore(t)
	key := "rl:acme:ip:" + uuid.NewString()

	if _, _, err := s.Incr(context.Background(), key, 100*time.Millisecond); err != nil {
		t.Fatalf("Incr: %v", err)
	}
	time.Sleep(150 * time.Millisecond)

	count, _, err := s.Incr(context.Background(), key, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Incr after expiry: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want fresh window starting at 1", count)
	}
}

func TestIncrIsolatesKeys(t *testing.T) {
	s := testStore(t)
	a := "rl:acme:user:" + uuid.NewString()
	b := "rl:acme:user:" + uuid.NewString()

	if _, _, err := s.Incr(context.Background(), a, time.Minute); err != nil {
		t.Fatalf("Incr a: %v", err)
	}
	count, _, err := s.Incr(context.Background(), b, time.Minute)
	if err != nil {
		t.Fatalf("Incr b: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 for an untouched key", count)
	}
}

func TestToInt64(t *testing.T) {
	if n, err := toInt64(int64(42)); err != nil || n != 42 {
		t.Errorf("toInt64(int64) = %d, %v", n, err)
	}
	if n, err := toInt64("1700000000000"); err != nil || n != 1700000000000 {
		t.Errorf("toInt64(string) = %d, %v", n, err)
	}
	if _, err := toInt64(3.14); err == nil {
		t.Error("toInt64(float) should error")
	}
}
