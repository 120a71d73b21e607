// Package hs256 implements the token verifier port with HS256-signed JWTs
// using only the standard library crypto primitives.
package hs256

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
)

// jwtHeader is the fixed base64url-encoded header for HS256.
var jwtHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

// Verifier checks HS256 token signatures, expiry, and the expected issuer
// and audience.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// payload is the full token body: the context claims plus the registered
// iss/aud fields checked here and not surfaced to callers.
type payload struct {
	apictx.Claims
	Issuer   string `json:"iss"`
	Audience string `json:"aud"`
}

// NewVerifier creates a verifier. Issuer and audience checks are skipped
// when the corresponding value is empty.
func NewVerifier(secret []byte, issuer, audience string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer, audience: audience, now: time.Now}
}

// Verify implements apictx.TokenVerifier.
func (v *Verifier) Verify(_ context.Context, token string) (*apictx.Claims, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "malformed token")
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "invalid token signature")
	}

	raw, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "undecodable token payload")
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "unparseable token claims")
	}

	if p.ExpiresAt != 0 && v.now().Unix() > p.ExpiresAt {
		return nil, apierror.New(apierror.CodeAuthExpiredToken, "token expired")
	}
	if v.issuer != "" && p.Issuer != v.issuer {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "invalid token issuer")
	}
	if v.audience != "" && p.Audience != v.audience {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "invalid token audience")
	}

	return &p.Claims, nil
}

// Signer mints HS256 tokens. It lives next to the verifier so tests and
// local tooling can issue tokens the verifier accepts.
type Signer struct {
	secret   []byte
	issuer   string
	audience string
}

// NewSigner creates a signer with the same parameters as the verifier.
func NewSigner(secret []byte, issuer, audience string) *Signer {
	return &Signer{secret: secret, issuer: issuer, audience: audience}
}

// Sign mints a token for the given claims. Zero IssuedAt/ExpiresAt are
// filled in with now and now+ttl.
func (s *Signer) Sign(claims apictx.Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	if claims.IssuedAt == 0 {
		claims.IssuedAt = now.Unix()
	}
	if claims.ExpiresAt == 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}

	body, err := json.Marshal(payload{Claims: claims, Issuer: s.issuer, Audience: s.audience})
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := jwtHeader + "." + base64URLEncode(body)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	return signingInput + "." + base64URLEncode(mac.Sum(nil)), nil
}

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
