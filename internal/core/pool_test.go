package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noopFactory() EntryFactory {
	return func(_ context.Context, id string) (Hooks, error) {
		return newFakeHooks(), nil
	}
}

func failFactory(msg string) EntryFactory {
	return func(_ context.Context, id string) (Hooks, error) {
		return nil, errors.New(msg)
	}
}

// flakyFactory fails the first n calls, then succeeds.
func flakyFactory(n int) EntryFactory {
	var calls atomic.Int64
	return func(_ context.Context, id string) (Hooks, error) {
		if calls.Add(1) <= int64(n) {
			return nil, errors.New("transient failure")
		}
		return newFakeHooks(), nil
	}
}

func TestPool_Borrow_GrowsUpToMaxSize(t *testing.T) {
	t.Parallel()

	p := NewPool(noopFactory(), 4, "")

	type result struct {
		entry *Entry
		token uint64
	}
	results := make([]result, 4)
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, e, tok, err := p.Borrow(context.Background(), time.Second, nil)
			if err != nil {
				t.Errorf("Borrow() error = %v", err)
				return
			}
			results[i] = result{e, tok}
		}(i)
	}
	wg.Wait()

	if got := p.TotalSize(); got != 4 {
		t.Fatalf("TotalSize() = %d, want 4", got)
	}

	seen := map[*Entry]bool{}
	for _, r := range results {
		if r.entry == nil {
			continue
		}
		if seen[r.entry] {
			t.Fatalf("same entry handed out twice: P3 violated")
		}
		seen[r.entry] = true
	}

	_, _, _, err := p.Borrow(context.Background(), 100*time.Millisecond, nil)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("5th Borrow() error = %v, want ErrPoolExhausted (P1: max size %d)", err, 4)
	}
}

func TestPool_Borrow_ImmediateExhaustionAtZeroTimeout(t *testing.T) {
	t.Parallel()

	p := NewPool(noopFactory(), 1, "")
	_, _, _, err := p.Borrow(context.Background(), time.Second, nil)
	if err != nil {
		t.Fatalf("first Borrow() error = %v", err)
	}

	start := time.Now()
	_, _, _, err = p.Borrow(context.Background(), 0, nil)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("Borrow() with zero budget error = %v, want ErrPoolExhausted", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Fatalf("Borrow() with zero budget took %s, want near-immediate failure", elapsed)
	}
}

func TestPool_Borrow_WakesOnReturn(t *testing.T) {
	t.Parallel()

	p := NewPool(noopFactory(), 1, "")

	_, entryA, tokenA, err := p.Borrow(context.Background(), time.Second, nil)
	if err != nil {
		t.Fatalf("Borrow() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _, err := p.Borrow(context.Background(), 5*time.Second, nil)
		if err != nil {
			t.Errorf("waiting Borrow() error = %v", err)
		}
	}()

	time.Sleep(20 * time.Millisecond)

	if err := entryA.FireTerminated(tokenA); err != nil {
		t.Fatalf("FireTerminated() error = %v", err)
	}
	// Hooks availability is backend-owned; simulate the proxy's Close path
	// making the backend session available again.
	entryA.hook.(*fakeHooks).MarkReleased()
	p.OnEntryTerminated(entryA)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiting borrower was never woken after return")
	}
}

func TestPool_Borrow_CreationFailureDuringGrowthRetries(t *testing.T) {
	t.Parallel()

	p := NewPool(flakyFactory(1), 1, "")
	_, e, _, err := p.Borrow(context.Background(), time.Second, nil)
	if err != nil {
		t.Fatalf("Borrow() error = %v", err)
	}
	if e == nil {
		t.Fatal("expected a non-nil entry after retrying past the transient factory failure")
	}
	if got := p.TotalSize(); got != 1 {
		t.Fatalf("TotalSize() = %d, want 1 (failed attempt must not leave a gap)", got)
	}
}

func TestPool_Destroy_IdempotentAndInert(t *testing.T) {
	t.Parallel()

	p := NewPool(noopFactory(), 2, "")
	p.Borrow(context.Background(), time.Second, nil)

	if err := p.Destroy(context.Background()); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if err := p.Destroy(context.Background()); err != nil {
		t.Fatalf("second Destroy() error = %v, want nil", err)
	}

	if got := p.TotalSize(); got != 0 {
		t.Fatalf("TotalSize() after destroy = %d, want 0", got)
	}
	if got := p.AvailableSize(); got != 0 {
		t.Fatalf("AvailableSize() after destroy = %d, want 0", got)
	}

	_, _, _, err := p.Borrow(context.Background(), time.Second, nil)
	if !errors.Is(err, ErrPoolDestroyed) {
		t.Fatalf("Borrow() after destroy error = %v, want ErrPoolDestroyed", err)
	}
}

func TestPool_Refresh_RecreatesAvailableEntries(t *testing.T) {
	t.Parallel()

	p := NewPool(noopFactory(), 2, "")
	_, e, tok, err := p.Borrow(context.Background(), time.Second, nil)
	if err != nil {
		t.Fatalf("Borrow() error = %v", err)
	}
	// Release it so Refresh sees it as available.
	e.hook.(*fakeHooks).MarkReleased()
	if err := e.FireTerminated(tok); err != nil {
		t.Fatalf("FireTerminated() error = %v", err)
	}

	if err := p.Refresh(context.Background(), 2); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := p.TotalSize(); got != 2 {
		t.Fatalf("TotalSize() after refresh = %d, want 2", got)
	}
}

func TestPool_Borrow_Recycle(t *testing.T) {
	t.Parallel()

	owner := "unit-of-work-1"
	p := NewPool(func(_ context.Context, id string) (Hooks, error) {
		return &recyclableHooks{fakeHooks: newFakeHooks(), owner: owner}, nil
	}, 1, "")

	_, e1, tok1, err := p.Borrow(context.Background(), time.Second, nil)
	if err != nil {
		t.Fatalf("first Borrow() error = %v", err)
	}
	if err := e1.FireTerminated(tok1); err != nil {
		t.Fatalf("FireTerminated() error = %v", err)
	}

	_, e2, _, err := p.Borrow(context.Background(), time.Second, owner)
	if err != nil {
		t.Fatalf("recycle Borrow() error = %v", err)
	}
	if e1 != e2 {
		t.Fatal("expected recycle to hand back the affiliated entry without a fresh scan")
	}
}
