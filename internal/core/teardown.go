package core

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// destroyConcurrency bounds how many entries are torn down in parallel
// during a bulk destroy, using errgroup's SetLimit for a bounded fan-out.
const destroyConcurrency = 10

// destroyTimeout bounds how long a single entry's Destroy may take during a
// bulk teardown, so one stuck backend session cannot stall shutdown forever.
const destroyTimeout = 10 * time.Second

// destroyAll tears down every entry in entries concurrently, bounded by
// destroyConcurrency, logging a warning for each that was still in use.
// It force-destroys: an entry still claimed/in-use at teardown time is torn
// down anyway rather than skipped, since this is deliberate full-pool
// teardown, not a racy maintenance pass. Individual destroy failures are
// logged rather than aggregated, since a partial teardown failure should not
// prevent the remaining entries (or the caller) from proceeding.
func destroyAll(ctx context.Context, entries []*Entry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(destroyConcurrency)

	for _, e := range entries {
		e := e
		g.Go(func() error {
			if e.IsInUse() {
				Logger().Warn("destroying entry still in use", "entry", e.ID())
			}
			dctx, cancel := context.WithTimeout(gctx, destroyTimeout)
			defer cancel()
			if err := e.ForceDestroy(dctx); err != nil {
				Logger().Warn("destroy entry failed", "entry", e.ID(), "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
