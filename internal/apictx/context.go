package apictx

import "context"

// ctxKey is a private type to prevent collisions with other context keys.
type ctxKey struct{}

// WithContext stores the API context in a standard context for transport
// middleware to hand to handlers.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the API context stored in ctx, or nil if absent.
func FromContext(ctx context.Context) *Context {
	c, _ := ctx.Value(ctxKey{}).(*Context)
	return c
}
