// Package verifycache decorates a token verifier with an in-process
// ristretto cache so each token is cryptographically verified once, not on
// every request it appears on.
package verifycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/campuskit/campuskit/internal/apictx"
)

// maxCachedTTL bounds how long a verified token stays cached even when its
// own expiry is further out, so revocation-adjacent changes converge.
const maxCachedTTL = 5 * time.Minute

// Verifier caches successful verifications keyed by token digest. Failures
// are never cached.
type Verifier struct {
	next apictx.TokenVerifier
	c    *ristretto.Cache[string, *apictx.Claims]
	now  func() time.Time
}

// New wraps next with a cache holding up to maxEntries verified tokens.
func New(next apictx.TokenVerifier, maxEntries int64) (*Verifier, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *apictx.Claims]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Verifier{next: next, c: c, now: time.Now}, nil
}

// Verify implements apictx.TokenVerifier.
func (v *Verifier) Verify(ctx context.Context, token string) (*apictx.Claims, error) {
	key := digest(token)
	if claims, ok := v.c.Get(key); ok {
		return claims, nil
	}

	claims, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := maxCachedTTL
	if claims.ExpiresAt != 0 {
		if until := time.Unix(claims.ExpiresAt, 0).Sub(v.now()); until < ttl {
			ttl = until
		}
	}
	if ttl > 0 {
		v.c.SetWithTTL(key, claims, 1, ttl)
	}
	return claims, nil
}

// Close releases the cache resources.
func (v *Verifier) Close() {
	v.c.Close()
}

// digest keys the cache without keeping raw tokens in memory.
func digest(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
