package sqlbackend

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver: no cgo toolchain, no external service, so the
	// reference backend and the tests built on it run anywhere the rest of
	// the module does.
	_ "modernc.org/sqlite"

	"github.com/sessionpool/sessionpool"
	"github.com/sessionpool/sessionpool/internal/fileutil"
)

// DefaultDSN opens a shared-cache in-memory database. Every connection in
// the process opened against it sees the same tables, matching the
// "pooled entries share one in-process database" shape the reference
// backend demonstrates.
const DefaultDSN = "file::memory:?cache=shared"

// Backend is the reference sessionpool.Factory target: a pool of
// *sql.Conn values drawn from a single *sql.DB, against a real
// database/sql driver.
//
// One Backend should back one Manager. Use Open to construct one, then pass
// Backend.Factory to sessionpool.NewManager.
type Backend struct {
	db *sql.DB
}

// Open opens the backend database at dsn and returns a Backend ready to
// hand to sessionpool.NewManager. An empty dsn uses DefaultDSN.
//
// If dsn names a filesystem path rather than an in-memory or URI DSN, Open
// creates its parent directory first.
func Open(dsn string) (*Backend, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if path, ok := filePath(dsn); ok {
		if err := fileutil.EnsureDirForFile(path); err != nil {
			return nil, fmt.Errorf("sqlbackend: prepare database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlbackend: open %s: %w", dsn, err)
	}

	// The pool above us is the thing that should bound connection count;
	// database/sql's own pool would just duplicate that bookkeeping, so it
	// is left effectively unbounded here and each Session pins exactly one
	// *sql.Conn for its whole lifetime via DB.Conn.
	db.SetMaxIdleConns(0)

	return &Backend{db: db}, nil
}

// Close closes the underlying *sql.DB. Call after the Manager built from
// this Backend has been shut down.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Factory satisfies sessionpool.Factory: it checks out one dedicated
// *sql.Conn from the backend database for each new pooled entry.
func (b *Backend) Factory(ctx context.Context, id string) (sessionpool.Hooks, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlbackend: acquire connection for %s: %w", id, err)
	}
	return newSession(id, conn), nil
}

// filePath reports the filesystem path dsn names, if any. In-memory and
// URI-qualified DSNs (":memory:", "file::memory:...", "file:...?mode=memory")
// are left to the driver untouched.
func filePath(dsn string) (string, bool) {
	switch {
	case dsn == ":memory:":
		return "", false
	case len(dsn) >= 5 && dsn[:5] == "file:":
		return "", false
	default:
		return dsn, true
	}
}
