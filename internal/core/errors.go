package core

import "github.com/sessionpool/sessionpool/internal/sentinel"

// ErrCreateConnection is returned when a backend session cannot be opened or
// fails its liveness probe.
const ErrCreateConnection = sentinel.Error("create connection failed")

// ErrPoolExhausted is returned when a borrow times out with no entry acquired
// and the pool is already at its maximum size.
const ErrPoolExhausted = sentinel.Error("pool exhausted")

// ErrPoolDestroyed is returned by any operation invoked after the pool has
// been destroyed.
const ErrPoolDestroyed = sentinel.Error("pool destroyed")

// ErrConnectionPool is a generic internal consistency failure, used when an
// invariant violation is surfaced defensively rather than panicked.
const ErrConnectionPool = sentinel.Error("connection pool error")

// ErrDoubleRelease is returned when a release token does not match an
// entry's current generation, indicating the entry was already released
// (and possibly re-acquired) by the time this release arrived.
const ErrDoubleRelease = sentinel.Error("double release of pooled entry")
