// Package core provides the internal implementation of the session pool.
//
// The primary types are:
//   - [Manager]: state machine with two-phase initialization (NewManagerWithConfig /
//     Initialize), borrow/return orchestration, and parallel shutdown with drain timeout.
//   - [Pool]: the entry collection, implementing scan-and-claim borrow, growth up to
//     a configured maximum, and condition-based waiting with budget recomputation.
//   - [Entry]: a pooled session wrapper with a generation-counter claim, listener
//     notification on return, and the abstract hooks a concrete backend implements.
//   - [Scheduler]: the periodic maintenance loop (reap-in-use, max-lifetime eviction,
//     min-size top-up, max-idle shrink).
//   - [ManagerConfig]: a validated, immutable configuration struct built from the
//     public package's functional options.
package core
