package middleware

import "context"

type contextKey string

const (
	ctxCartOwner    contextKey = "cart_owner"
	ctxUserID       contextKey = "user_id"
	ctxRequestScope contextKey = "request_scope"
)

// requestScope is installed by RequestID and filled in by inner middleware, so
// Recoverer and Logging can report the cart owner of a request they wrap.
type requestScope struct {
	owner string
}

func withRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxRequestScope, &requestScope{})
}

func scopedCartOwner(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if scope, ok := ctx.Value(ctxRequestScope).(*requestScope); ok {
		return scope.owner
	}
	return ""
}

// CartOwnerFromContext returns the storage owner resolved by CartOwner.
func CartOwnerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartOwner).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// WithCartOwner injects the cart owner into the context.
func WithCartOwner(ctx context.Context, owner string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if scope, ok := ctx.Value(ctxRequestScope).(*requestScope); ok {
		scope.owner = owner
	}
	return context.WithValue(ctx, ctxCartOwner, owner)
}

// WithUserID injects the authenticated user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}
