package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// EntryFactory creates the backend Hooks for a new pooled entry identified
// by id. The returned Hooks must report IsAvailable() true immediately.
type EntryFactory func(ctx context.Context, id string) (Hooks, error)

// Pool holds the entry collection and implements the scan-and-claim borrow
// algorithm, growth up to a configured maximum, and condition-based waiting
// with budget recomputation across wake-ups.
//
// mu serializes every structural change to entries (insertion, removal),
// size queries, and waiter notification. It is never held across
// Entry.CreateConnectionProxy or Entry.Destroy — those may perform backend
// I/O and must not block other borrowers from scanning.
//
// It is safe for concurrent use by multiple goroutines.
type Pool struct {
	mu      sync.Mutex
	entries []*Entry
	nextID  int
	maxSize int
	testQuery string
	destroyed bool
	factory   EntryFactory

	// notify is a coalescing, single-slot channel: OnEntryTerminated does a
	// non-blocking send, and waiters select on it alongside a timer. This
	// replaces a literal sync.Cond, whose Wait has no timeout, with a
	// primitive that supports bounded, budget-aware waiting.
	notify chan struct{}
}

var _ EntryReleaser = (*Pool)(nil)

// NewPool constructs an empty Pool. Panics if factory is nil or maxSize is
// not positive.
func NewPool(factory EntryFactory, maxSize int, testQuery string) *Pool {
	if factory == nil {
		panic("sessionpool: pool factory must not be nil")
	}
	if maxSize <= 0 {
		panic(fmt.Sprintf("sessionpool: pool maxSize must be positive, got %d", maxSize))
	}
	return &Pool{
		factory:   factory,
		maxSize:   maxSize,
		testQuery: testQuery,
		notify:    make(chan struct{}, 1),
	}
}

// OnEntryTerminated implements EntryReleaser: it wakes at most one waiter.
// Non-blocking by construction (buffered, capacity 1, drop-if-full), so it
// is safe to call from Entry.FireTerminated without risking a deadlock if no
// one is currently waiting.
func (p *Pool) OnEntryTerminated(_ *Entry) {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// TotalSize returns the number of entries currently tracked. Returns 0 once
// the pool has been destroyed.
func (p *Pool) TotalSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return 0
	}
	return len(p.entries)
}

// AvailableSize returns the number of entries currently available for
// borrowing. Returns 0 once the pool has been destroyed.
func (p *Pool) AvailableSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return 0
	}
	n := 0
	for _, e := range p.entries {
		if e.IsAvailable() {
			n++
		}
	}
	return n
}

// Borrow implements the Pool Manager's borrow algorithm: try recycle, then
// scan-claim-create in a loop, growing the pool when under max size, and
// waiting on entry-return notifications for the remainder of the budget.
//
// recycleToken, when non-nil, is offered to each entry's Recycler hook
// before the normal scan runs.
func (p *Pool) Borrow(ctx context.Context, budget time.Duration, recycleToken any) (any, *Entry, uint64, error) {
	deadline := time.Now().Add(budget)

	if recycleToken != nil {
		if proxy, entry, token, ok := p.tryRecycle(ctx, recycleToken); ok {
			return proxy, entry, token, nil
		}
	}

	for {
		if p.isDestroyed() {
			return nil, nil, 0, ErrPoolDestroyed
		}

		if proxy, entry, token, tried, err := p.tryClaimAndCreate(ctx); tried {
			if err == nil {
				return proxy, entry, token, nil
			}
			// Creation failed for the claimed entry: it has already been
			// removed and destroyed by tryClaimAndCreate. Retry the scan
			// immediately, bounded by the remaining budget, mirroring the
			// spec's "continue the loop" failure path.
			if time.Now().After(deadline) {
				return nil, nil, 0, ErrPoolExhausted
			}
			continue
		}

		if grew, err := p.tryGrow(ctx); err != nil {
			// Growth failure is not specially coalesced across borrowers and
			// gets no back-off: retry the scan immediately, bounded by the
			// remaining budget, so a transient factory failure doesn't cost
			// the caller a full wait cycle before the next attempt.
			if time.Now().After(deadline) {
				return nil, nil, 0, ErrPoolExhausted
			}
			continue
		} else if grew {
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil, 0, ErrPoolExhausted
		}

		if err := p.wait(ctx, remaining); err != nil {
			return nil, nil, 0, err
		}
	}
}

// tryRecycle scans for the first entry whose Recycler hook affiliates it
// with token and asks it, under its own mutex, to produce a fresh proxy.
// Errors are logged and swallowed, matching the spec's "recycle failures
// fall through to normal acquisition" contract.
func (p *Pool) tryRecycle(ctx context.Context, token any) (any, *Entry, uint64, bool) {
	for _, e := range p.snapshot() {
		if !e.CanBeRecycledForCallingThread(token) {
			continue
		}
		e.ClaimForRecycle()
		proxy, tok, err := e.CreateConnectionProxy(ctx, p.testQuery)
		if err != nil {
			Logger().Warn("recycle failed, falling back to normal acquisition", "entry", e.ID(), "error", err)
			return nil, nil, 0, false
		}
		return proxy, e, tok, true
	}
	return nil, nil, 0, false
}

// tryClaimAndCreate scans entries oldest-to-newest for the first available
// one, claims it, and produces a proxy. tried reports whether any entry was
// claimed at all (as opposed to none being available), so the caller can
// distinguish "nothing to claim, try growing" from "claimed one, it failed,
// retry the scan".
func (p *Pool) tryClaimAndCreate(ctx context.Context) (proxy any, entry *Entry, token uint64, tried bool, err error) {
	for _, e := range p.snapshot() {
		if !e.MarkAsBeingAcquiredIfAvailable() {
			continue
		}
		proxy, token, err = e.CreateConnectionProxy(ctx, p.testQuery)
		if err != nil {
			p.removeEntry(e)
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if destroyErr := e.Destroy(stopCtx, false); destroyErr != nil {
				Logger().Warn("destroy after failed proxy creation", "entry", e.ID(), "error", destroyErr)
			}
			cancel()
			return nil, nil, 0, true, err
		}
		return proxy, e, token, true, nil
	}
	return nil, nil, 0, false, nil
}

// tryGrow creates and inserts one new entry if the pool is under max size.
func (p *Pool) tryGrow(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return false, ErrPoolDestroyed
	}
	if len(p.entries) >= p.maxSize {
		p.mu.Unlock()
		return false, nil
	}
	id := fmt.Sprintf("%d", p.nextID)
	p.nextID++
	p.mu.Unlock()

	entry, err := p.createEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("grow pool: %w", err)
	}

	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if destroyErr := entry.Destroy(stopCtx, false); destroyErr != nil {
			Logger().Warn("destroy entry created after pool destroy", "entry", entry.ID(), "error", destroyErr)
		}
		return false, ErrPoolDestroyed
	}
	if len(p.entries) >= p.maxSize {
		// Lost the race to grow against a concurrent grower.
		p.mu.Unlock()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if destroyErr := entry.Destroy(stopCtx, false); destroyErr != nil {
			Logger().Warn("destroy entry lost grow race", "entry", entry.ID(), "error", destroyErr)
		}
		return false, nil
	}
	p.entries = append(p.entries, entry)
	p.mu.Unlock()
	return true, nil
}

// createEntry builds one Entry from the factory, registering the pool as its
// listener. Performed outside p.mu since the factory may do backend I/O.
func (p *Pool) createEntry(ctx context.Context, id string) (*Entry, error) {
	hooks, err := p.factory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateConnection, err)
	}
	return NewEntry(NewEntryParams{
		ID:       id,
		Hooks:    hooks,
		Releaser: p,
	}), nil
}

// wait blocks until an entry-return notification arrives, the remaining
// budget elapses, or ctx is done. Ownership of the pool mutex is never held
// while waiting.
func (p *Pool) wait(ctx context.Context, remaining time.Duration) error {
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-p.notify:
		return nil
	case <-timer.C:
		return ErrPoolExhausted
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPoolExhausted, ctx.Err())
	}
}

// snapshot returns a copy of the entry slice in insertion order, so scans
// can run without holding p.mu across per-entry work that may block.
func (p *Pool) snapshot() []*Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]*Entry, len(p.entries))
	copy(cp, p.entries)
	return cp
}

func (p *Pool) isDestroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// removeEntry deletes e from the collection, if present. No-op otherwise.
func (p *Pool) removeEntry(e *Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.entries {
		if existing == e {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}

// Destroy tears down every entry and marks the pool inert. Idempotent.
// Entries still in use are destroyed anyway, with a warning logged for each.
func (p *Pool) Destroy(ctx context.Context) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil
	}
	p.destroyed = true
	entries := p.entries
	p.entries = nil
	p.mu.Unlock()

	return destroyAll(ctx, entries)
}

// Refresh destroys every currently available entry and tops up to
// minPoolSize, leaving in-use entries untouched.
func (p *Pool) Refresh(ctx context.Context, minPoolSize int) error {
	for _, e := range p.snapshot() {
		if !e.IsAvailable() {
			continue
		}
		p.removeEntry(e)
		if err := e.Destroy(ctx, false); err != nil {
			Logger().Warn("destroy during refresh", "entry", e.ID(), "error", err)
		}
	}
	for p.TotalSize() < minPoolSize {
		grew, err := p.tryGrow(ctx)
		if err != nil {
			return fmt.Errorf("refresh top-up: %w", err)
		}
		if !grew {
			break
		}
	}
	return nil
}

// Entries returns a snapshot of every tracked entry, for use by the
// maintenance scheduler.
func (p *Pool) Entries() []*Entry {
	return p.snapshot()
}

// RemoveEntry removes e from the collection without destroying it. Used by
// the maintenance scheduler, which destroys entries itself after removal so
// it can log per-entry destroy failures with maintenance-specific context.
func (p *Pool) RemoveEntry(e *Entry) {
	p.removeEntry(e)
}

// Grow is the maintenance scheduler's top-up hook: it attempts to create one
// new entry, reporting whether the pool had room to grow.
func (p *Pool) Grow(ctx context.Context) (bool, error) {
	return p.tryGrow(ctx)
}
