// Package sessionpool provides a generic, concurrency-safe pool of reusable
// backend sessions.
//
// sessionpool bounds the number of live backend sessions (e.g. database
// connections), multiplexes a finite set of them across concurrent
// borrowers, probes each entry's liveness when it is borrowed, and periodically
// reclaims leaked, idle, or aged entries. The concrete backend — how a
// session is opened, probed for liveness, and torn down — is supplied by the
// caller through a [Factory] and [Hooks] implementation; the pool owns none
// of that.
//
// # Basic Usage
//
//	import "github.com/sessionpool/sessionpool"
//
//	ctx := context.Background()
//
//	mgr := sessionpool.NewManager(factory,
//		sessionpool.WithMinPoolSize(2),
//		sessionpool.WithMaxPoolSize(10),
//	)
//	if err := mgr.Initialize(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Shutdown()
//
//	proxy, err := mgr.Acquire(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer proxy.Release()
//
// # Parallel Borrowing
//
// Acquire is safe to call concurrently from many goroutines; the pool grows
// on demand up to WithMaxPoolSize and blocks new borrowers, bounded by
// WithBorrowTimeout, once it is full:
//
//	for i := 0; i < 10; i++ {
//		go func() {
//			proxy, err := mgr.Acquire(ctx)
//			if err != nil {
//				return
//			}
//			defer proxy.Release()
//			// use proxy...
//		}()
//	}
//
// # Maintenance
//
// A background scheduler reaps entries that have been borrowed longer than
// WithReapTimeout (leak recovery), evicts entries older than
// WithMaxLifetime, tops the pool back up to WithMinPoolSize, and shrinks
// idle entries past WithMaxIdleTime. Reaping, lifetime eviction and idle
// shrink are each disabled by passing a zero duration; top-up does nothing
// while WithMinPoolSize is 0.
package sessionpool
