package sessionpool

import (
	"context"
	"sync/atomic"

	"github.com/sessionpool/sessionpool/internal/core"
)

// Compile-time interface satisfaction checks.
var (
	_ Manager = (*managerWrapper)(nil)
	_ Proxy   = (*proxyWrapper)(nil)
)

// managerWrapper wraps core.Manager to implement the Manager interface.
//
// The core.Manager is stored as a named (unexported) field rather than
// embedded to prevent callers from using type assertions to access internal
// methods that are not part of the public Manager interface.
type managerWrapper struct {
	mgr *core.Manager
}

// Initialize wraps core.Manager.Initialize.
func (w *managerWrapper) Initialize(ctx context.Context) error {
	return w.mgr.Initialize(ctx)
}

// Acquire wraps core.Manager.Acquire, returning the Proxy interface.
//
//nolint:ireturn // Returns interface by design for testability.
func (w *managerWrapper) Acquire(ctx context.Context) (Proxy, error) {
	proxy, entry, token, err := w.mgr.Acquire(ctx, recycleTokenFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return &proxyWrapper{mgr: w.mgr, entry: entry, token: token, proxy: proxy}, nil
}

// Refresh wraps core.Manager.Refresh.
func (w *managerWrapper) Refresh(ctx context.Context) error {
	return w.mgr.Refresh(ctx)
}

// Shutdown wraps core.Manager.Shutdown.
func (w *managerWrapper) Shutdown() error {
	return w.mgr.Shutdown()
}

// TotalSize wraps core.Manager.TotalSize.
func (w *managerWrapper) TotalSize() int { return w.mgr.TotalSize() }

// AvailableSize wraps core.Manager.AvailableSize.
func (w *managerWrapper) AvailableSize() int { return w.mgr.AvailableSize() }

// proxyWrapper wraps core.Entry plus the backend-specific proxy value to
// implement the Proxy interface.
//
// released tracks whether Release has been called on this wrapper. The
// wrapper-level flag provides a definitive per-acquisition guard; the
// underlying core.Entry also checks its generation counter, which is defense
// in depth against invariant violations, not the primary guard.
type proxyWrapper struct {
	mgr      *core.Manager
	entry    *core.Entry
	token    uint64
	proxy    any
	released atomic.Bool
}

// Unwrap returns the backend-specific proxy value.
func (w *proxyWrapper) Unwrap() any {
	return w.proxy
}

// Release returns the entry to the pool.
//
// Two-layer release guard:
//  1. w.released (CAS here) — per-wrapper flag that catches the common case
//     of a single caller releasing twice. Returns ErrDoubleRelease
//     immediately without touching entry state.
//  2. core.Entry.FireTerminated(token) — generation-counter CAS inside the
//     core layer that catches cross-wrapper races where the same entry has
//     been re-acquired by another consumer.
func (w *proxyWrapper) Release() error {
	if !w.released.CompareAndSwap(false, true) {
		return ErrDoubleRelease
	}
	return w.mgr.Release(w.entry, w.token)
}

// ID returns the underlying entry's identifier.
func (w *proxyWrapper) ID() string {
	return w.entry.ID()
}

// defaultManagerConfig returns a managerConfig populated with all default
// values.
func defaultManagerConfig() managerConfig {
	return managerConfig{ManagerConfig: core.ManagerConfig{
		MinPoolSize:         DefaultMinPoolSize,
		MaxPoolSize:         DefaultMaxPoolSize,
		BorrowTimeout:       DefaultBorrowTimeout,
		MaxIdleTime:         DefaultMaxIdleTime,
		ReapTimeout:         DefaultReapTimeout,
		MaxLifetime:         DefaultMaxLifetime,
		MaintenanceInterval: DefaultMaintenanceInterval,
		TestQuery:           DefaultTestQuery,
		UniqueResourceName:  DefaultUniqueResourceName,
	}}
}

// NewManager constructs a new Manager backed by factory.
//
// This performs no I/O; call Initialize before Acquire to pre-populate the
// pool to its configured minimum size, or call Acquire directly to grow the
// pool lazily on first use.
//
// Panics if any option receives an invalid value, or if the assembled
// configuration fails validation (see each With* function and
// core.ManagerConfig.Validate for constraints). factory must not be nil.
//
//nolint:ireturn // Returns interface by design for testability.
func NewManager(factory Factory, opts ...ManagerOption) Manager {
	if factory == nil {
		panic("sessionpool: factory must not be nil")
	}

	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	coreFactory := func(ctx context.Context, id string) (core.Hooks, error) {
		return factory(ctx, id)
	}

	return &managerWrapper{mgr: core.NewManagerWithConfig(cfg.toCoreConfig(), coreFactory)}
}
