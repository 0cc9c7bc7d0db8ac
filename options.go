package sessionpool

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
// It intentionally rejects zero; do not use for values where zero has
// special meaning (e.g., max idle time, where 0 means "disabled").
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("sessionpool: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonNegative panics if v < 0.
func requireNonNegative[T int | time.Duration](name string, v T) {
	if v < 0 {
		panic(fmt.Sprintf("sessionpool: %s must not be negative, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("sessionpool: %s must not be empty", name))
	}
}

// ManagerOption configures a Manager during construction via NewManager.
// Each With* function returns a ManagerOption that sets a specific field.
//
// Several With* functions panic on invalid input (negative sizes or
// durations, a non-positive max pool size, empty strings). These panics are
// intentional: option values are typically compile-time constants or
// package-level variables, so an invalid value indicates a programmer error
// rather than a runtime condition. The pattern mirrors [regexp.MustCompile]
// — fail fast during initialization instead of returning errors that would
// be universally fatal anyway.
type ManagerOption func(*managerConfig)

// WithMinPoolSize sets the target minimum number of entries the maintenance
// scheduler tops up toward.
//
// Default: 0.
//
// Panics if size is negative.
func WithMinPoolSize(size int) ManagerOption {
	requireNonNegative("min pool size", size)
	return func(c *managerConfig) {
		c.MinPoolSize = size
	}
}

// WithMaxPoolSize sets the hard cap on the number of entries the pool will
// ever hold at once.
//
// Default: 10.
//
// Panics if size <= 0: unlike min pool size, zero has no meaning here.
func WithMaxPoolSize(size int) ManagerOption {
	requirePositive("max pool size", size)
	return func(c *managerConfig) {
		c.MaxPoolSize = size
	}
}

// WithBorrowTimeout sets the maximum total wall-clock time Acquire will wait
// for an entry to become available.
//
// Default: 30 seconds.
//
// Panics if d is negative. A zero timeout is valid and means "never wait" —
// Acquire fails immediately with ErrPoolExhausted if no entry is free.
func WithBorrowTimeout(d time.Duration) ManagerOption {
	requireNonNegative("borrow timeout", d)
	return func(c *managerConfig) {
		c.BorrowTimeout = d
	}
}

// WithMaxIdleTime sets the duration an available entry may sit idle before
// the maintenance scheduler destroys it, so long as doing so keeps total
// size at or above the configured minimum.
//
// Default: 10 minutes. A value of 0 disables idle shrink entirely.
//
// Panics if d is negative.
func WithMaxIdleTime(d time.Duration) ManagerOption {
	requireNonNegative("max idle time", d)
	return func(c *managerConfig) {
		c.MaxIdleTime = d
	}
}

// WithReapTimeout sets the duration an in-use entry may go without being
// returned before the maintenance scheduler forcibly destroys it as a
// suspected leak.
//
// Default: 5 minutes. A value of 0 disables reaping entirely.
//
// Panics if d is negative.
func WithReapTimeout(d time.Duration) ManagerOption {
	requireNonNegative("reap timeout", d)
	return func(c *managerConfig) {
		c.ReapTimeout = d
	}
}

// WithMaxLifetime sets the duration since creation after which an available
// entry is destroyed by the maintenance scheduler, regardless of idle time.
//
// Default: 30 minutes. A value of 0 disables lifetime eviction entirely.
//
// Panics if d is negative.
func WithMaxLifetime(d time.Duration) ManagerOption {
	requireNonNegative("max lifetime", d)
	return func(c *managerConfig) {
		c.MaxLifetime = d
	}
}

// WithMaintenanceInterval sets the period of the maintenance scheduler.
//
// Default: 60 seconds. Non-positive values fall back to the default at
// construction time rather than panicking, since the scheduler always needs
// some interval to tick at.
func WithMaintenanceInterval(d time.Duration) ManagerOption {
	return func(c *managerConfig) {
		c.MaintenanceInterval = d
	}
}

// WithTestQuery sets the opaque liveness-probe string passed to a backend's
// TestUnderlyingConnection hook on every borrow.
//
// Default: "SELECT 1".
//
// Panics if query is empty.
func WithTestQuery(query string) ManagerOption {
	requireNonEmpty("test query", query)
	return func(c *managerConfig) {
		c.TestQuery = query
	}
}

// WithDefaultIsolationLevel sets the default isolation level stored with the
// configuration. The value is not passed to the Factory or to the entries.
//
// Panics if level is empty.
func WithDefaultIsolationLevel(level string) ManagerOption {
	requireNonEmpty("default isolation level", level)
	return func(c *managerConfig) {
		c.DefaultIsolationLevel = level
	}
}

// WithUniqueResourceName sets the name of this pool. Log records emitted by
// the pool do not include it.
//
// Default: "sessionpool".
//
// Panics if name is empty.
func WithUniqueResourceName(name string) ManagerOption {
	requireNonEmpty("unique resource name", name)
	return func(c *managerConfig) {
		c.UniqueResourceName = name
	}
}
