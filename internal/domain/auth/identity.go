package auth

import (
	"context"

	"quill-server-go/internal/domain/auth/model"
)

type contextKey struct{}

// NewContext returns a context carrying the resolved principal. The
// gate attaches this to every request that presented a valid
// credential; identity propagation is explicit rather than ambient.
func NewContext(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, principal)
}

// FromContext extracts the principal established for this call, if any.
func FromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(contextKey{}).(model.Principal)
	return principal, ok
}
