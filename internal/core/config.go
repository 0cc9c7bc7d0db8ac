package core

import (
	"errors"
	"fmt"
	"time"
)

// ManagerConfig holds configuration for Manager instances.
//
// Concurrency contract: all fields are immutable after construction via
// NewManagerWithConfig. The maintenance scheduler goroutine reads every
// field without synchronization, relying on this guarantee.
type ManagerConfig struct {
	// MinPoolSize is the target minimum number of entries. The maintenance
	// scheduler tops up toward this value. Default: 0.
	MinPoolSize int

	// MaxPoolSize is the hard cap on the number of entries the pool will
	// ever hold at once. Must be positive. Default: 10.
	MaxPoolSize int

	// BorrowTimeout bounds the total wall-clock time a borrower may wait
	// for an entry to become available.
	BorrowTimeout time.Duration

	// MaxIdleTime is the duration an available entry may sit idle before
	// the maintenance scheduler destroys it, so long as doing so keeps
	// total size at or above MinPoolSize. Zero disables idle shrink.
	MaxIdleTime time.Duration

	// ReapTimeout is the duration an in-use entry may go without being
	// returned before the maintenance scheduler forcibly destroys it.
	// Zero disables reaping.
	ReapTimeout time.Duration

	// MaxLifetime is the duration since creation after which an available
	// entry is destroyed by the maintenance scheduler, regardless of idle
	// time. Zero disables lifetime eviction.
	MaxLifetime time.Duration

	// MaintenanceInterval is the period of the maintenance scheduler.
	// Non-positive values fall back to DefaultMaintenanceInterval.
	MaintenanceInterval time.Duration

	// TestQuery is an opaque liveness-probe string passed through to the
	// backend's TestUnderlyingConnection hook.
	TestQuery string

	// DefaultIsolationLevel is stored with the configuration. It is not
	// passed to the backend factory or to the entries.
	DefaultIsolationLevel string

	// UniqueResourceName names this pool and must not be empty. Log records
	// emitted by the pool do not include it.
	UniqueResourceName string
}

// Validate checks all ManagerConfig invariants and returns an error describing
// every violation found. It uses errors.Join to report multiple issues at once,
// allowing callers to fix all problems in a single pass rather than playing
// whack-a-mole with one error at a time.
//
// Validate is called by NewManagerWithConfig, which panics on error since an
// invalid config is a programmer error.
func (c ManagerConfig) Validate() error {
	var errs []error

	if c.MinPoolSize < 0 {
		errs = append(errs, fmt.Errorf("min pool size must not be negative, got %d", c.MinPoolSize))
	}
	if c.MaxPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("max pool size must be greater than 0, got %d", c.MaxPoolSize))
	}
	if c.MinPoolSize > 0 && c.MaxPoolSize > 0 && c.MinPoolSize > c.MaxPoolSize {
		errs = append(errs, fmt.Errorf("min pool size (%d) must not exceed max pool size (%d)", c.MinPoolSize, c.MaxPoolSize))
	}
	if c.BorrowTimeout < 0 {
		errs = append(errs, fmt.Errorf("borrow timeout must not be negative, got %s", c.BorrowTimeout))
	}
	if c.MaxIdleTime < 0 {
		errs = append(errs, fmt.Errorf("max idle time must not be negative, got %s", c.MaxIdleTime))
	}
	if c.ReapTimeout < 0 {
		errs = append(errs, fmt.Errorf("reap timeout must not be negative, got %s", c.ReapTimeout))
	}
	if c.MaxLifetime < 0 {
		errs = append(errs, fmt.Errorf("max lifetime must not be negative, got %s", c.MaxLifetime))
	}
	if c.UniqueResourceName == "" {
		errs = append(errs, errors.New("unique resource name must not be empty"))
	}

	return errors.Join(errs...)
}
