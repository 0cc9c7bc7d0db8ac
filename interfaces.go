package sessionpool

import (
	"context"

	"github.com/sessionpool/sessionpool/internal/core"
)

// Hooks is the capability interface a concrete backend implements to plug
// into the pool's generic lifecycle. One Hooks value is wrapped by exactly
// one pooled entry for its whole lifetime. Re-exported from internal/core so
// backend implementations need not import an internal package.
type Hooks = core.Hooks

// Recycler is an optional capability a Hooks implementation may satisfy to
// participate in unit-of-work affinity: an entry already associated with the
// calling unit of work can be handed back to it without a fresh scan.
type Recycler = core.Recycler

// Factory creates the backend Hooks for a new pooled entry identified by id.
// The returned Hooks must report IsAvailable() true immediately.
type Factory func(ctx context.Context, id string) (Hooks, error)

// Manager coordinates a pool of backend sessions.
//
// Callers must follow this lifecycle ordering:
//
//	NewManager → Initialize → Acquire/Release (repeatable) → Shutdown
//
// Acquire may be called before Initialize: the pool grows lazily on first
// use. Shutdown is safe to call at any point, including before Initialize.
type Manager interface {
	// Initialize brings the pool up to the configured minimum size and
	// starts the maintenance scheduler. Safe to call multiple times: after
	// a successful initialization, subsequent calls return nil immediately.
	Initialize(ctx context.Context) error

	// Acquire borrows an entry from the pool, creating one on demand if
	// none is free and the pool is under its configured maximum.
	//
	// Blocks, bounded by the configured borrow timeout, if the pool is at
	// its maximum size and no entry is available.
	//
	// Returns ErrPoolExhausted if the borrow timeout elapses or ctx is
	// done before an entry becomes available. Returns ErrPoolDestroyed if
	// the manager has been shut down.
	Acquire(ctx context.Context) (Proxy, error)

	// Refresh destroys every currently available entry and recreates
	// entries up to the configured minimum pool size. Entries currently
	// in use are left untouched.
	Refresh(ctx context.Context) error

	// Shutdown stops the maintenance scheduler, drains in-flight Acquire
	// calls, and destroys every entry. Safe to call even if Initialize was
	// never called. Idempotent.
	Shutdown() error

	// TotalSize returns the number of entries currently tracked.
	TotalSize() int

	// AvailableSize returns the number of entries currently available for
	// borrowing.
	AvailableSize() int
}

// Proxy is the user-facing handle issued by a successful Acquire.
type Proxy interface {
	// Unwrap returns the backend-specific value produced by the Hooks
	// implementation's CreateConnectionProxy.
	Unwrap() any

	// Release returns the entry to the pool, notifying any registered
	// listener and waking one waiting borrower.
	//
	// Returns ErrDoubleRelease if called more than once on the same
	// acquisition. Using defer proxy.Release() is safe.
	Release() error

	// ID returns a unique identifier for the underlying pooled entry.
	ID() string
}
