package sessionpool

import "context"

// recycleTokenKey is the context key under which WithRecycleToken stores a
// caller's unit-of-work identity.
type recycleTokenKey struct{}

// WithRecycleToken attaches token to ctx so that a subsequent Acquire can
// offer it to each entry's Recycler hook before falling back to a normal
// scan. token is opaque to the pool; backends compare it via their own
// Recycler.CanBeRecycledForCallingThread implementation.
func WithRecycleToken(ctx context.Context, token any) context.Context {
	return context.WithValue(ctx, recycleTokenKey{}, token)
}

// recycleTokenFromContext returns the token attached by WithRecycleToken, or
// nil if none was attached.
func recycleTokenFromContext(ctx context.Context) any {
	return ctx.Value(recycleTokenKey{})
}
