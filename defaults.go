package sessionpool

import "time"

// Default configuration values for NewManager.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them (e.g.,
// 2 * DefaultBorrowTimeout).
const (
	// DefaultMinPoolSize is the target minimum number of entries the
	// maintenance scheduler tops up toward.
	DefaultMinPoolSize = 0

	// DefaultMaxPoolSize is the hard cap on the number of entries the pool
	// will ever hold at once.
	DefaultMaxPoolSize = 10

	// DefaultBorrowTimeout is the maximum total wall-clock time a borrower
	// will wait for an entry to become available.
	DefaultBorrowTimeout = 30 * time.Second

	// DefaultMaxIdleTime is the duration an available entry may sit idle
	// before the maintenance scheduler destroys it, so long as doing so
	// keeps total size at or above the configured minimum.
	DefaultMaxIdleTime = 10 * time.Minute

	// DefaultReapTimeout is the duration an in-use entry may go without
	// being returned before the maintenance scheduler forcibly destroys it.
	DefaultReapTimeout = 5 * time.Minute

	// DefaultMaxLifetime is the duration since creation after which an
	// available entry is destroyed by the maintenance scheduler.
	DefaultMaxLifetime = 30 * time.Minute

	// DefaultMaintenanceInterval is the period of the maintenance
	// scheduler. Used whenever a non-positive interval is configured.
	DefaultMaintenanceInterval = 60 * time.Second

	// DefaultTestQuery is the liveness-probe string passed to a backend's
	// TestUnderlyingConnection hook when none is configured.
	DefaultTestQuery = "SELECT 1"

	// DefaultUniqueResourceName is the pool name used when
	// WithUniqueResourceName is not called.
	DefaultUniqueResourceName = "sessionpool"
)
