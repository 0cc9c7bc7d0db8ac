package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type managerState int32

const (
	managerCreated managerState = iota
	managerInitializing
	managerReady
	managerShuttingDown
)

// ShutdownDrainTimeout bounds how long Shutdown waits for in-flight Acquire
// calls to finish before proceeding to tear down entries anyway.
const ShutdownDrainTimeout = 30 * time.Second

// Manager is the Pool Manager: it owns the Pool and Scheduler, and exposes
// the state-machine-guarded Initialize/Acquire/Refresh/Shutdown operations.
type Manager struct {
	cfg       ManagerConfig
	pool      *Pool
	scheduler *Scheduler
	state     atomic.Int32

	inflight         atomic.Int64
	inflightDone     chan struct{}
	inflightDoneOnce sync.Once
}

// NewManagerWithConfig constructs a Manager. Panics if cfg fails Validate or
// factory is nil — both are programmer errors.
func NewManagerWithConfig(cfg ManagerConfig, factory EntryFactory) *Manager {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("sessionpool: invalid manager config: %v", err))
	}
	pool := NewPool(factory, cfg.MaxPoolSize, cfg.TestQuery)
	m := &Manager{
		cfg:          cfg,
		pool:         pool,
		inflightDone: make(chan struct{}),
	}
	m.scheduler = NewScheduler(pool, cfg)
	return m
}

// Initialize brings the pool up to MinPoolSize and starts the maintenance
// scheduler. Idempotent: calling it again after a successful Initialize is a
// no-op. On failure, any entries already created are rolled back.
func (m *Manager) Initialize(ctx context.Context) error {
	if !m.state.CompareAndSwap(int32(managerCreated), int32(managerInitializing)) {
		switch managerState(m.state.Load()) {
		case managerReady:
			return nil
		case managerShuttingDown:
			return ErrPoolDestroyed
		}
		return fmt.Errorf("%w: manager already initializing", ErrConnectionPool)
	}

	if err := m.pool.Refresh(ctx, m.cfg.MinPoolSize); err != nil {
		destroyCtx, cancel := context.WithTimeout(context.Background(), destroyTimeout)
		defer cancel()
		entries := m.pool.Entries()
		for _, e := range entries {
			m.pool.RemoveEntry(e)
		}
		_ = destroyAll(destroyCtx, entries)
		m.state.Store(int32(managerCreated))
		return fmt.Errorf("initialize pool: %w", err)
	}

	m.scheduler.Start()
	m.state.Store(int32(managerReady))
	return nil
}

// Acquire runs the borrow protocol. It does not require Initialize: the pool
// grows on demand, but the maintenance scheduler runs only once Initialize
// has been called. recycleToken, when non-nil, is offered to the recycle path
// before normal acquisition.
func (m *Manager) Acquire(ctx context.Context, recycleToken any) (any, *Entry, uint64, error) {
	if managerState(m.state.Load()) == managerShuttingDown {
		return nil, nil, 0, ErrPoolDestroyed
	}

	m.inflight.Add(1)
	defer m.finishInflight()

	// Re-check after registering inflight, closing the race where Shutdown
	// observes inflight==0 and proceeds between our first check and the
	// increment above.
	if managerState(m.state.Load()) == managerShuttingDown {
		return nil, nil, 0, ErrPoolDestroyed
	}

	proxy, entry, token, err := m.pool.Borrow(ctx, m.cfg.BorrowTimeout, recycleToken)
	if err != nil {
		return nil, nil, 0, err
	}
	return proxy, entry, token, nil
}

func (m *Manager) finishInflight() {
	if m.inflight.Add(-1) == 0 && managerState(m.state.Load()) == managerShuttingDown {
		m.inflightDoneOnce.Do(func() { close(m.inflightDone) })
	}
}

// Release returns an entry's proxy, invoking its FireTerminated.
func (m *Manager) Release(e *Entry, token uint64) error {
	return e.FireTerminated(token)
}

// Refresh destroys every available entry and tops back up to MinPoolSize.
func (m *Manager) Refresh(ctx context.Context) error {
	state := managerState(m.state.Load())
	if state == managerShuttingDown {
		return ErrPoolDestroyed
	}
	if state != managerReady {
		return fmt.Errorf("%w: manager not ready", ErrConnectionPool)
	}
	return m.pool.Refresh(ctx, m.cfg.MinPoolSize)
}

// Shutdown stops the maintenance scheduler, drains in-flight Acquire calls
// (bounded by ShutdownDrainTimeout), then destroys every entry. Idempotent.
func (m *Manager) Shutdown() error {
	prev := managerState(m.state.Swap(int32(managerShuttingDown)))
	if prev == managerShuttingDown {
		return nil
	}

	if m.inflight.Load() == 0 {
		m.inflightDoneOnce.Do(func() { close(m.inflightDone) })
	}

	timer := time.NewTimer(ShutdownDrainTimeout)
	defer timer.Stop()
	select {
	case <-m.inflightDone:
	case <-timer.C:
		Logger().Warn("shutdown drain timeout exceeded, proceeding with entries still in flight")
	}

	if prev >= managerInitializing {
		m.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), destroyTimeout)
	defer cancel()
	return m.pool.Destroy(ctx)
}

// TotalSize returns the pool's current total entry count.
func (m *Manager) TotalSize() int { return m.pool.TotalSize() }

// AvailableSize returns the pool's current available entry count.
func (m *Manager) AvailableSize() int { return m.pool.AvailableSize() }
