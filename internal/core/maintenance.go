package core

import (
	"context"
	"sync"
	"time"
)

// DefaultMaintenanceInterval is used when a non-positive interval is
// configured.
const DefaultMaintenanceInterval = 60 * time.Second

// Scheduler runs the periodic maintenance pass: reap-in-use, max-lifetime
// eviction, min-size top-up, and max-idle shrink, in that order, on every
// tick.
type Scheduler struct {
	pool   *Pool
	cfg    ManagerConfig
	ticker *time.Ticker

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewScheduler constructs a Scheduler for pool, governed by cfg. It does not
// start ticking until Start is called.
func NewScheduler(pool *Pool, cfg ManagerConfig) *Scheduler {
	interval := cfg.MaintenanceInterval
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	return &Scheduler{
		pool:   pool,
		cfg:    cfg,
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the scheduler's background goroutine. Safe to call once;
// calling it twice will start two tick loops.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop halts the tick loop and waits for the in-flight tick, if any, to
// finish. Idempotent.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.ticker.Stop()
	})
	<-s.doneCh
}

func (s *Scheduler) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.ticker.C:
			s.tick()
		}
	}
}

// tick performs one maintenance pass on a fresh background context, since
// maintenance is not tied to any caller's request lifetime. Each entry
// destroy is bounded by destroyTimeout; top-up's factory calls run without a
// deadline.
func (s *Scheduler) tick() {
	ctx := context.Background()
	s.reapInUse(ctx)
	s.evictExpiredLifetime(ctx)
	s.topUp(ctx)
	s.shrinkIdle(ctx)
}

// reapInUse forcibly destroys entries held in-use longer than ReapTimeout.
// Disabled when ReapTimeout is zero.
func (s *Scheduler) reapInUse(ctx context.Context) {
	if s.cfg.ReapTimeout <= 0 {
		return
	}
	for _, e := range s.pool.Entries() {
		if !e.IsInUse() {
			continue
		}
		if e.InUseFor() <= s.cfg.ReapTimeout {
			continue
		}
		s.pool.RemoveEntry(e)
		dctx, cancel := context.WithTimeout(ctx, destroyTimeout)
		if err := e.Destroy(dctx, true); err != nil {
			Logger().Warn("reap in-use entry failed", "entry", e.ID(), "error", err)
		}
		cancel()
	}
}

// evictExpiredLifetime destroys available entries past MaxLifetime.
// Disabled when MaxLifetime is zero.
func (s *Scheduler) evictExpiredLifetime(ctx context.Context) {
	if s.cfg.MaxLifetime <= 0 {
		return
	}
	for _, e := range s.pool.Entries() {
		if !e.IsAvailable() {
			continue
		}
		if time.Since(e.creationTime) < s.cfg.MaxLifetime {
			continue
		}
		s.pool.RemoveEntry(e)
		dctx, cancel := context.WithTimeout(ctx, destroyTimeout)
		if err := e.Destroy(dctx, false); err != nil {
			Logger().Warn("evict expired-lifetime entry failed", "entry", e.ID(), "error", err)
		}
		cancel()
	}
}

// topUp grows the pool toward MinPoolSize. A creation failure is logged and
// breaks the loop; the next tick retries.
func (s *Scheduler) topUp(ctx context.Context) {
	for s.pool.TotalSize() < s.cfg.MinPoolSize {
		grew, err := s.pool.Grow(ctx)
		if err != nil {
			Logger().Warn("maintenance top-up failed", "error", err)
			return
		}
		if !grew {
			return
		}
	}
}

// shrinkIdle destroys up to (total - MinPoolSize) available entries that
// have been idle at least MaxIdleTime. Disabled when MaxIdleTime is zero.
func (s *Scheduler) shrinkIdle(ctx context.Context) {
	if s.cfg.MaxIdleTime <= 0 {
		return
	}
	removable := s.pool.TotalSize() - s.cfg.MinPoolSize
	if removable <= 0 {
		return
	}
	for _, e := range s.pool.Entries() {
		if removable <= 0 {
			return
		}
		if !e.IsAvailable() {
			continue
		}
		if e.IdleFor() < s.cfg.MaxIdleTime {
			continue
		}
		s.pool.RemoveEntry(e)
		dctx, cancel := context.WithTimeout(ctx, destroyTimeout)
		if err := e.Destroy(dctx, false); err != nil {
			Logger().Warn("shrink idle entry failed", "entry", e.ID(), "error", err)
		}
		cancel()
		removable--
	}
}
