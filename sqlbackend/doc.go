// Package sqlbackend is the reference implementation of sessionpool's Hooks
// and Factory contracts against a real database/sql driver.
//
// It opens one *sql.Conn per pooled entry against a shared in-process SQLite
// database (a pure-Go engine via modernc.org/sqlite, so it needs no cgo
// toolchain), and demonstrates the optional Recycler capability with a
// trivial matching-token comparison rather than inventing a transaction
// manager.
//
// This package is demonstration and integration-test infrastructure. The
// pool's own invariants are proven against the core using lightweight
// in-memory fakes; sqlbackend exercises the same contracts end-to-end
// against a real driver.
package sqlbackend
