package auth

import (
	"context"
	"errors"
)

// GinContextKey is the gin context key downstream route handlers read the
// decoded claims from. The name is part of the handler contract.
const GinContextKey = "user_jwt_content"

type ctxKey int

const ctxClaims ctxKey = iota

// WithClaims attaches decoded claims to the request context. Claims travel
// only through request-scoped state; concurrent requests never interfere.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxClaims, c)
}

// ClaimsFromContext returns the claims attached by the authorization gate.
// An error means the request reached identity-dependent code without passing
// the gate.
func ClaimsFromContext(ctx context.Context) (*Claims, error) {
	v := ctx.Value(ctxClaims)
	if c, ok := v.(*Claims); ok && c != nil {
		return c, nil
	}
	return nil, errors.New("claims not in context")
}
