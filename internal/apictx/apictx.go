// Package apictx builds the per-request API context: tenant, optional
// authenticated user, request id, client IP and arrival time. The context is
// immutable after construction and threaded explicitly through handlers.
package apictx

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/apierror"
)

// UnknownIP is the sentinel used when no client address can be determined.
const UnknownIP = "unknown"

// Header names recognized by the extractor.
const (
	HeaderTenantID     = "X-Tenant-ID"
	HeaderRequestID    = "X-Request-ID"
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

// Tenant identifies the isolation boundary of a request.
type Tenant struct {
	ID string `json:"tenantId"`
}

// User is the authenticated principal, present only when a valid bearer
// token accompanied the request.
type User struct {
	ID    string   `json:"userId"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Context is the normalized per-request context.
type Context struct {
	Tenant    Tenant
	User      *User // nil for anonymous requests
	RequestID string
	Timestamp time.Time
	IP        string
}

// Authenticated is a Context whose User is guaranteed non-nil. Handlers
// declared with mandatory authentication receive this type, so the guarantee
// holds by construction rather than convention.
type Authenticated struct {
	*Context
}

// AuthUser returns the non-nil authenticated user.
func (a *Authenticated) AuthUser() *User { return a.User }

// Claims is the verified token payload contract. Verification itself is the
// injected TokenVerifier's job; the extractor only consumes this shape.
type Claims struct {
	Subject   string   `json:"sub"`
	Email     string   `json:"email"`
	TenantID  string   `json:"tenant_id"`
	Roles     []string `json:"roles"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}

// TokenVerifier verifies a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Input is the transport-agnostic request shape the extractor reads.
type Input struct {
	Header     func(name string) string // case-insensitive header access
	Host       string
	RemoteAddr string
}

// Extract derives a Context from raw request data. Tenant comes from the
// X-Tenant-ID header, falling back to the first label of the Host subdomain;
// failure to resolve any tenant is a hard 400 — there is no default tenant.
func Extract(ctx context.Context, in Input, verifier TokenVerifier) (*Context, error) {
	tenantID := strings.TrimSpace(in.Header(HeaderTenantID))
	if tenantID == "" {
		tenantID = tenantFromHost(in.Host)
	}
	if tenantID == "" {
		return nil, apierror.New(apierror.CodeInvalidInput, "tenant could not be resolved from request")
	}

	c := &Context{
		Tenant:    Tenant{ID: tenantID},
		RequestID: requestID(in),
		Timestamp: time.Now().UTC(),
		IP:        clientIP(in),
	}

	auth := in.Header("Authorization")
	if auth == "" {
		return c, nil
	}

	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth || token == "" {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "malformed authorization header")
	}
	if verifier == nil {
		return nil, apierror.New(apierror.CodeAuthInvalidToken, "no token verifier configured")
	}

	claims, err := verifier.Verify(ctx, token)
	if err != nil {
		if e, ok := apierror.IsError(err); ok {
			return nil, e
		}
		return nil, apierror.Wrap(apierror.CodeAuthInvalidToken, "token verification failed", err)
	}
	if claims.TenantID != "" && claims.TenantID != tenantID {
		return nil, apierror.New(apierror.CodeTenantMismatch, "token is not valid for this tenant")
	}

	c.User = &User{
		ID:    claims.Subject,
		Email: claims.Email,
		Roles: claims.Roles,
	}
	return c, nil
}

// RequireAuthentication narrows a Context to Authenticated, failing with
// AUTH_REQUIRED when the request is anonymous. The underlying context is not
// copied.
func RequireAuthentication(c *Context) (*Authenticated, error) {
	if c == nil || c.User == nil {
		return nil, apierror.Unauthorized("")
	}
	return &Authenticated{Context: c}, nil
}

// NewRequestID returns a prefixed, human-inspectable unique id.
func NewRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func requestID(in Input) string {
	if id := in.Header(HeaderRequestID); id != "" {
		return id
	}
	return NewRequestID()
}

// tenantFromHost extracts the subdomain label from a host like
// "acme.campuskit.io". Bare hosts, IPs and localhost yield no tenant.
func tenantFromHost(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" || net.ParseIP(host) != nil {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	sub := parts[0]
	if sub == "" || sub == "www" {
		return ""
	}
	return sub
}

// clientIP resolves the client address: X-Forwarded-For first hop, then
// X-Real-IP, then the remote address.
func clientIP(in Input) string {
	if fwd := in.Header(HeaderForwardedFor); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := in.Header(HeaderRealIP); real != "" {
		return real
	}
	if in.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(in.RemoteAddr); err == nil {
			return host
		}
		return in.RemoteAddr
	}
	return UnknownIP
}
