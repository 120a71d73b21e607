// Package redisrate implements the rate-limit counter store on Redis for
// multi-process deployments. It is a drop-in replacement for the in-memory
// store: same key semantics, same window behavior.
package redisrate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the window counter and stamps the window start in
// one atomic round trip, so concurrent processes never race on the
// check-and-increment.
//
// KEYS[1] counter key, KEYS[2] window-start key
// ARGV[1] window millis, ARGV[2] now millis
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[1])
end
local start = redis.call("GET", KEYS[2])
if not start then
	start = ARGV[2]
	redis.call("SET", KEYS[2], start, "PX", ARGV[1])
end
return {count, start}
`)

// Store is a Redis-backed CounterStore.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New creates a Redis counter store. The prefix namespaces all keys.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "campuskit"
	}
	return &Store{client: client, prefix: prefix}
}

// Incr implements ratelimit.CounterStore. The window resets through key
// expiry: once the counter key's TTL elapses, the next INCR starts a fresh
// window.
func (s *Store) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()
	counterKey := fmt.Sprintf("%s:%s:n", s.prefix, key)
	startKey := fmt.Sprintf("%s:%s:w", s.prefix, key)

	raw, err := incrScript.Run(ctx, s.client,
		[]string{counterKey, startKey},
		window.Milliseconds(), now.UnixMilli(),
	).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis incr: %w", err)
	}

	vals, ok := raw.([]any)
	if !ok || len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis incr: unexpected reply %v", raw)
	}
	count, ok := vals[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("redis incr: unexpected count %v", vals[0])
	}
	startMillis, err := toInt64(vals[1])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis incr: unexpected window start %v", vals[1])
	}

	return count, time.UnixMilli(startMillis), nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case string:
		var n int64
		_, err := fmt.Sscanf(t, "%d", &n)
		return n, err
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}
