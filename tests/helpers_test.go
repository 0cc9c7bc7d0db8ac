//go:build integration

package sessionpool_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/sessionpool/sessionpool"
	"github.com/sessionpool/sessionpool/sqlbackend"
)

// newBackend opens a fresh in-memory sqlbackend.Backend and registers its
// cleanup with t.
func newBackend(t *testing.T) *sqlbackend.Backend {
	t.Helper()
	b, err := sqlbackend.Open("")
	if err != nil {
		t.Fatalf("sqlbackend.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// countingFactory wraps a sessionpool.Factory, counting calls and optionally
// failing the first n of them.
type countingFactory struct {
	inner    sessionpool.Factory
	failN    int32
	attempts atomic.Int32
}

func newCountingFactory(inner sessionpool.Factory, failFirstN int32) *countingFactory {
	return &countingFactory{inner: inner, failN: failFirstN}
}

func (f *countingFactory) Factory(ctx context.Context, id string) (sessionpool.Hooks, error) {
	n := f.attempts.Add(1)
	if n <= f.failN {
		return nil, errFactoryInduced
	}
	return f.inner(ctx, id)
}

var errFactoryInduced = errInduced("induced factory failure")

type errInduced string

func (e errInduced) Error() string { return string(e) }
