package sessionpool

import "github.com/sessionpool/sessionpool/internal/core"

// Sentinel errors for error inspection with errors.Is.
//
// These use the sentinel.Error const pattern instead of errors.New vars.
// sentinel.Error is a string type implementing error, allowing errors to be
// declared as const. This prevents accidental reassignment and enables
// compile-time immutability, while remaining compatible with errors.Is
// through Go's default == comparison on comparable types.
const (
	// ErrCreateConnection is returned when a backend session cannot be
	// opened or fails its liveness probe.
	ErrCreateConnection = core.ErrCreateConnection

	// ErrPoolExhausted is returned when Acquire times out with no entry
	// available and the pool is already at its maximum size.
	ErrPoolExhausted = core.ErrPoolExhausted

	// ErrPoolDestroyed is returned by any operation invoked after the
	// manager has been shut down.
	ErrPoolDestroyed = core.ErrPoolDestroyed

	// ErrConnectionPool is a generic internal consistency failure.
	ErrConnectionPool = core.ErrConnectionPool

	// ErrDoubleRelease is returned when a proxy is released more than once.
	ErrDoubleRelease = core.ErrDoubleRelease
)
