// Package handler composes the request pipeline: context extraction, auth
// enforcement, rate limiting, input validation, then the business function,
// with the result or error normalized into a uniform response envelope. The
// package is transport-agnostic; the HTTP adapter binds it to chi.
package handler

import (
	"context"
	"net/url"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
	"github.com/campuskit/campuskit/internal/ratelimit"
	"github.com/campuskit/campuskit/internal/validate"
)

// Request is the abstract inbound request the pipeline consumes. Header
// access is case-insensitive; Body may be nil for bodyless requests.
type Request struct {
	Method     string
	URL        *url.URL
	Host       string
	RemoteAddr string
	Header     func(name string) string
	Body       func() ([]byte, error)
}

// Config declares the cross-cutting behavior of one handler.
type Config struct {
	RequireAuth bool
	Schema      *validate.Schema
	RateLimit   *ratelimit.Config
}

// Observer receives pipeline outcomes for metrics. All methods are optional
// notifications; implementations must not block.
type Observer interface {
	ObserveRequest(method string, status int)
	ObserveAuthFailure()
	ObserveRateLimitDenial()
}

// Func is a fully-composed handler.
type Func func(ctx context.Context, req Request) Response

// Factory builds handlers that share a verifier, a rate-limit counter store
// and an optional observer.
type Factory struct {
	verifier apictx.TokenVerifier
	store    ratelimit.CounterStore
	obs      Observer
}

// NewFactory creates a handler factory. verifier may be nil for deployments
// with no authenticated surface; store must be non-nil if any handler
// configures a rate limit.
func NewFactory(verifier apictx.TokenVerifier, store ratelimit.CounterStore, obs Observer) *Factory {
	return &Factory{verifier: verifier, store: store, obs: obs}
}

// Handle composes the pipeline for one operation. The business function
// receives the validated input and the request context explicitly.
func Handle[In, Out any](f *Factory, cfg Config, fn func(ctx context.Context, in In, c *apictx.Context) (Out, error)) Func {
	return func(ctx context.Context, req Request) Response {
		resp := f.run(ctx, req, cfg, func(ctx context.Context, c *apictx.Context, raw Request) Response {
			in, err := parseInput[In](cfg.Schema, raw)
			if err != nil {
				return errorResponse(err)
			}
			out, err := fn(ctx, in, c)
			if err != nil {
				return errorResponse(err)
			}
			return successResponse(out)
		})
		f.observe(req.Method, resp)
		return resp
	}
}

// HandleAuthed is Handle for operations that require authentication; the
// business function receives the narrowed context, so a missing user is
// unrepresentable at the call site.
func HandleAuthed[In, Out any](f *Factory, cfg Config, fn func(ctx context.Context, in In, c *apictx.Authenticated) (Out, error)) Func {
	cfg.RequireAuth = true
	return func(ctx context.Context, req Request) Response {
		resp := f.run(ctx, req, cfg, func(ctx context.Context, c *apictx.Context, raw Request) Response {
			ac, err := apictx.RequireAuthentication(c)
			if err != nil {
				return errorResponse(err)
			}
			in, err := parseInput[In](cfg.Schema, raw)
			if err != nil {
				return errorResponse(err)
			}
			out, err := fn(ctx, in, ac)
			if err != nil {
				return errorResponse(err)
			}
			return successResponse(out)
		})
		f.observe(req.Method, resp)
		return resp
	}
}

// run executes the shared pipeline prefix (extract, auth, rate limit) and
// delegates to invoke for validation and the business call. Rate-limit
// headers are attached to the final response whether or not later steps
// succeed.
func (f *Factory) run(ctx context.Context, req Request, cfg Config, invoke func(context.Context, *apictx.Context, Request) Response) Response {
	// A context already extracted upstream (by the Context middleware) is
	// reused; extraction then verification happen here only for bare
	// transports.
	c := apictx.FromContext(ctx)
	if c == nil {
		var err error
		c, err = apictx.Extract(ctx, apictx.Input{
			Header:     req.Header,
			Host:       req.Host,
			RemoteAddr: req.RemoteAddr,
		}, f.verifier)
		if err != nil {
			if e, ok := apierror.IsError(err); ok && e.Status() == 401 {
				f.observeAuthFailure()
			}
			return errorResponse(err)
		}
		ctx = apictx.WithContext(ctx, c)
	}

	if cfg.RequireAuth {
		if _, err := apictx.RequireAuthentication(c); err != nil {
			f.observeAuthFailure()
			return errorResponse(err)
		}
	}

	var rlHeaders map[string]string
	if cfg.RateLimit != nil {
		limiter := ratelimit.New(*cfg.RateLimit, f.store)
		res, err := limiter.Allow(ctx, c)
		if err != nil {
			if _, ok := apierror.IsError(err); !ok {
				// Store failure, not a deny: there is no quota state worth
				// reporting in headers.
				return errorResponse(err)
			}
			f.observeRateLimitDenial()
			return withHeaders(errorResponse(err), ratelimit.Headers(res, cfg.RateLimit.MaxRequests))
		}
		rlHeaders = ratelimit.Headers(res, cfg.RateLimit.MaxRequests)
	}

	return withHeaders(invoke(ctx, c, req), rlHeaders)
}

// parseInput validates the request input against the schema. Bodyless
// methods validate the query string; everything else the JSON body. A
// schema failure is always a 400 VALIDATION_ERROR, never an internal error.
func parseInput[In any](schema *validate.Schema, req Request) (In, error) {
	var zero In
	if schema == nil {
		return zero, nil
	}
	switch req.Method {
	case "GET", "HEAD", "DELETE":
		var params url.Values
		if req.URL != nil {
			params = req.URL.Query()
		}
		return validate.Query[In](schema, params)
	default:
		var data []byte
		if req.Body != nil {
			var err error
			data, err = req.Body()
			if err != nil {
				return zero, apierror.New(apierror.CodeInvalidInput, "request body could not be read")
			}
		}
		return validate.Body[In](schema, data)
	}
}

func (f *Factory) observe(method string, resp Response) {
	if f.obs != nil {
		f.obs.ObserveRequest(method, resp.Status)
	}
}

func (f *Factory) observeAuthFailure() {
	if f.obs != nil {
		f.obs.ObserveAuthFailure()
	}
}

func (f *Factory) observeRateLimitDenial() {
	if f.obs != nil {
		f.obs.ObserveRateLimitDenial()
	}
}

// AuthenticatedFactory builds handlers that always require authentication,
// removing the possibility of forgetting the flag per call site.
type AuthenticatedFactory struct {
	f *Factory
}

// NewAuthenticatedFactory wraps a factory so every handler it builds
// enforces authentication.
func NewAuthenticatedFactory(f *Factory) *AuthenticatedFactory {
	return &AuthenticatedFactory{f: f}
}

// AuthFactoryHandle builds a handler through an AuthenticatedFactory.
func AuthFactoryHandle[In, Out any](af *AuthenticatedFactory, cfg Config, fn func(ctx context.Context, in In, c *apictx.Authenticated) (Out, error)) Func {
	cfg.RequireAuth = true
	return HandleAuthed(af.f, cfg, fn)
}
