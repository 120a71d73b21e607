// Package ratelimit implements fixed-window rate limiting over a pluggable
// counter store. The store is injected, never package-level state, so the
// in-memory and Redis backends are interchangeable at the call site.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
)

// CounterStore is the port for fixed-window counters. Incr atomically
// increments the counter for key in the window containing now, creating or
// resetting the window as needed, and returns the post-increment count with
// the window start.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, windowStart time.Time, err error)
}

// Config declares the window for one limited surface.
type Config struct {
	Window      time.Duration
	MaxRequests int
	// KeyFunc overrides the default identity derivation.
	KeyFunc func(c *apictx.Context) string
}

// Named presets. The values are part of the API contract.
var (
	PresetStandard = Config{Window: time.Minute, MaxRequests: 100}
	PresetAuth     = Config{Window: time.Minute, MaxRequests: 10}
	PresetPublic   = Config{Window: time.Minute, MaxRequests: 30}
	PresetBulk     = Config{Window: time.Minute, MaxRequests: 10}
	PresetSearch   = Config{Window: time.Minute, MaxRequests: 60}
	PresetWebhooks = Config{Window: time.Minute, MaxRequests: 1000}
)

// Result reports one rate-limit decision.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration // set only when denied
}

// Limiter enforces a fixed-window limit keyed by request identity.
type Limiter struct {
	cfg   Config
	store CounterStore
	now   func() time.Time
}

// New creates a limiter on the given store.
func New(cfg Config, store CounterStore) *Limiter {
	return &Limiter{cfg: cfg, store: store, now: time.Now}
}

// SetClock replaces the limiter's time source. Call before the limiter is
// shared; tests use it to advance windows without sleeping.
func (l *Limiter) SetClock(now func() time.Time) { l.now = now }

// Check runs one fixed-window decision for an explicit key.
func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	count, windowStart, err := l.store.Incr(ctx, key, l.cfg.Window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit store: %w", err)
	}

	reset := windowStart.Add(l.cfg.Window)
	if count > int64(l.cfg.MaxRequests) {
		retry := reset.Sub(l.now())
		if retry < 0 {
			retry = 0
		}
		return Result{Allowed: false, Remaining: 0, ResetTime: reset, RetryAfter: retry}, nil
	}
	return Result{
		Allowed:   true,
		Remaining: l.cfg.MaxRequests - int(count),
		ResetTime: reset,
	}, nil
}

// Allow derives the key from the request context and checks the limit. On
// deny it returns a RATE_LIMIT_EXCEEDED error (callers catch, not branch)
// together with the result so headers can still be attached.
func (l *Limiter) Allow(ctx context.Context, c *apictx.Context) (Result, error) {
	res, err := l.Check(ctx, l.Key(c))
	if err != nil {
		return Result{}, err
	}
	if !res.Allowed {
		return res, apierror.RateLimited(retryAfterSeconds(res.RetryAfter))
	}
	return res, nil
}

// Key computes the identity bucket: tenant+user, then tenant+ip, then a
// single shared anonymous bucket. The shared bucket trades quota isolation
// for bounded key cardinality when no identity is available.
func (l *Limiter) Key(c *apictx.Context) string {
	if l.cfg.KeyFunc != nil {
		return l.cfg.KeyFunc(c)
	}
	return DefaultKey(c)
}

// DefaultKey is the standard identity derivation used when no KeyFunc is
// configured.
func DefaultKey(c *apictx.Context) string {
	if c == nil {
		return "rl:anonymous"
	}
	if c.User != nil {
		return fmt.Sprintf("rl:%s:user:%s", c.Tenant.ID, c.User.ID)
	}
	if c.IP != "" && c.IP != apictx.UnknownIP {
		return fmt.Sprintf("rl:%s:ip:%s", c.Tenant.ID, c.IP)
	}
	return "rl:anonymous"
}

// MaxRequests exposes the configured limit for header rendering.
func (l *Limiter) MaxRequests() int { return l.cfg.MaxRequests }

// Headers renders the standard rate-limit headers for a decision.
// Retry-After is present only on deny.
func Headers(res Result, limit int) map[string]string {
	h := map[string]string{
		"X-RateLimit-Limit":     fmt.Sprintf("%d", limit),
		"X-RateLimit-Remaining": fmt.Sprintf("%d", res.Remaining),
		"X-RateLimit-Reset":     fmt.Sprintf("%d", unixCeil(res.ResetTime)),
	}
	if !res.Allowed {
		h["Retry-After"] = fmt.Sprintf("%d", retryAfterSeconds(res.RetryAfter))
	}
	return h
}

// SetHeaders writes the rate-limit headers onto an HTTP response.
func SetHeaders(w http.ResponseWriter, res Result, limit int) {
	for k, v := range Headers(res, limit) {
		w.Header().Set(k, v)
	}
}

func unixCeil(t time.Time) int64 {
	secs := t.Unix()
	if t.Nanosecond() > 0 {
		secs++
	}
	return secs
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}
