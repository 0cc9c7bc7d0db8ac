package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func baseManagerConfig() ManagerConfig {
	return ManagerConfig{
		MinPoolSize:         1,
		MaxPoolSize:         3,
		BorrowTimeout:       time.Second,
		MaintenanceInterval: 50 * time.Millisecond,
		UniqueResourceName:  "test-pool",
	}
}

func TestManager_InitializeToppedUpToMinSize(t *testing.T) {
	t.Parallel()

	cfg := baseManagerConfig()
	cfg.MinPoolSize = 2
	m := NewManagerWithConfig(cfg, noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := m.TotalSize(); got != 2 {
		t.Fatalf("TotalSize() after Initialize = %d, want 2 (P2)", got)
	}
}

func TestManager_Initialize_Idempotent(t *testing.T) {
	t.Parallel()

	m := NewManagerWithConfig(baseManagerConfig(), noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("first Initialize() error = %v", err)
	}
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize() error = %v, want nil", err)
	}
}

func TestManager_AcquireWithoutInitializeLazilyGrows(t *testing.T) {
	t.Parallel()

	m := NewManagerWithConfig(baseManagerConfig(), noopFactory())
	defer m.Shutdown()

	_, _, _, err := m.Acquire(context.Background(), nil)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
}

func TestManager_Shutdown_RejectsFurtherAcquire(t *testing.T) {
	t.Parallel()

	m := NewManagerWithConfig(baseManagerConfig(), noopFactory())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	_, _, _, err := m.Acquire(context.Background(), nil)
	if !errors.Is(err, ErrPoolDestroyed) {
		t.Fatalf("Acquire() after Shutdown error = %v, want ErrPoolDestroyed (P5)", err)
	}
	if got := m.TotalSize(); got != 0 {
		t.Fatalf("TotalSize() after Shutdown = %d, want 0 (P5)", got)
	}
}

func TestManager_Shutdown_Idempotent(t *testing.T) {
	t.Parallel()

	m := NewManagerWithConfig(baseManagerConfig(), noopFactory())
	if err := m.Shutdown(); err != nil {
		t.Fatalf("first Shutdown() error = %v", err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error = %v, want nil", err)
	}
}

func TestManager_Shutdown_DestroysInUseEntryWithoutArmingLeakCapture(t *testing.T) {
	m := NewManagerWithConfig(baseManagerConfig(), noopFactory())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	_, entry, _, err := m.Acquire(context.Background(), nil)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	hooks := entry.hook.(*fakeHooks)

	if ArmedLeakCapture() {
		t.Fatal("leak capture must not already be armed")
	}

	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if !hooks.destroyed {
		t.Fatal("Shutdown() must destroy the backend hook of an entry still checked out, not leak it")
	}
	if ArmedLeakCapture() {
		t.Fatal("Shutdown() of an entry still checked out must not be mistaken for a leak")
	}
}

func TestManager_MaintenanceReapsLeakedEntry(t *testing.T) {
	t.Parallel()

	cfg := baseManagerConfig()
	cfg.MinPoolSize = 0
	cfg.ReapTimeout = 30 * time.Millisecond
	cfg.MaintenanceInterval = 20 * time.Millisecond
	m := NewManagerWithConfig(cfg, noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	_, _, _, err := m.Acquire(context.Background(), nil)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	// Never release: simulate a leak. The scheduler must reap it.

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.TotalSize() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("leaked entry was never reaped, TotalSize() = %d (P4)", m.TotalSize())
}

func TestManager_MaintenanceEvictsExpiredLifetimeAndTopsUp(t *testing.T) {
	t.Parallel()

	cfg := baseManagerConfig()
	cfg.MinPoolSize = 1
	cfg.MaxLifetime = 30 * time.Millisecond
	cfg.MaintenanceInterval = 20 * time.Millisecond
	m := NewManagerWithConfig(cfg, noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	original := m.pool.Entries()[0]

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries := m.pool.Entries()
		if len(entries) == 1 && entries[0] != original {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expired entry was never replaced by maintenance top-up")
}

func TestManager_MaxLifetimeDisabledWhenZero(t *testing.T) {
	t.Parallel()

	cfg := baseManagerConfig()
	cfg.MinPoolSize = 1
	cfg.MaxLifetime = 0
	cfg.MaintenanceInterval = 10 * time.Millisecond
	m := NewManagerWithConfig(cfg, noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	original := m.pool.Entries()[0]

	time.Sleep(100 * time.Millisecond)

	entries := m.pool.Entries()
	if len(entries) != 1 || entries[0] != original {
		t.Fatal("MaxLifetime=0 must disable lifetime eviction (B2)")
	}
}

func TestManager_MaxIdleTimeDisabledWhenZero(t *testing.T) {
	t.Parallel()

	cfg := baseManagerConfig()
	cfg.MinPoolSize = 0
	cfg.MaxIdleTime = 0
	cfg.MaintenanceInterval = 10 * time.Millisecond
	m := NewManagerWithConfig(cfg, noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	_, entry, token, err := m.Acquire(context.Background(), nil)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	entry.hook.(*fakeHooks).MarkReleased()
	if err := m.Release(entry, token); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if got := m.TotalSize(); got != 1 {
		t.Fatal("MaxIdleTime=0 must disable idle shrink (B3)")
	}
}

func TestManager_Refresh_RecreatesIdleEntries(t *testing.T) {
	t.Parallel()

	cfg := baseManagerConfig()
	cfg.MinPoolSize = 2
	cfg.MaxPoolSize = 2
	m := NewManagerWithConfig(cfg, noopFactory())
	defer m.Shutdown()

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	before := m.pool.Entries()

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	after := m.pool.Entries()
	if len(after) != 2 {
		t.Fatalf("TotalSize() after Refresh = %d, want 2 (L2)", len(after))
	}
	for _, e := range after {
		for _, old := range before {
			if e == old {
				t.Fatal("Refresh() must replace every available entry with a fresh one (L2)")
			}
		}
	}
}
