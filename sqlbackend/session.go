package sqlbackend

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sessionpool/sessionpool"
)

// Session is the sessionpool.Hooks implementation wrapping one *sql.Conn.
// It is also the proxy value returned to callers by a successful Acquire:
// type-assert sessionpool.Proxy.Unwrap() to *sqlbackend.Session to run
// queries.
type Session struct {
	id   string
	conn *sql.Conn

	mu        sync.Mutex
	destroyed atomic.Bool
	owner     atomic.Value // holds any; zero value means unset
}

var (
	_ sessionpool.Hooks    = (*Session)(nil)
	_ sessionpool.Recycler = (*Session)(nil)
)

func newSession(id string, conn *sql.Conn) *Session {
	return &Session{id: id, conn: conn}
}

// ID returns the identifier this session was created with.
func (s *Session) ID() string { return s.id }

// Bind records token as this session's unit-of-work owner, so a later
// Acquire offering the same token (via sessionpool.WithRecycleToken) can
// recycle this exact session instead of scanning for any available one.
// Call it after a successful Acquire, before Release.
func (s *Session) Bind(token any) {
	s.owner.Store(boxedToken{token})
}

// Unbind clears any recorded owner, so the session returns to ordinary
// first-available scanning.
func (s *Session) Unbind() {
	s.owner.Store(boxedToken{nil})
}

// boxedToken lets atomic.Value hold a possibly-nil any without violating
// its "consistent concrete type" requirement.
type boxedToken struct{ token any }

// QueryContext runs a query against the underlying connection.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// ExecContext runs a statement against the underlying connection.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

// CreateConnectionProxy returns this Session as the user-facing proxy.
func (s *Session) CreateConnectionProxy(_ context.Context) (any, error) {
	return s, nil
}

// TestUnderlyingConnection runs testQuery as a liveness probe.
func (s *Session) TestUnderlyingConnection(ctx context.Context, testQuery string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.QueryContext(ctx, testQuery)
	if err != nil {
		return fmt.Errorf("probe %s: %w", s.id, err)
	}
	return rows.Close()
}

// Destroy closes the underlying *sql.Conn, returning it to the driver.
func (s *Session) Destroy(_ context.Context, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}

// IsAvailable reports whether the session has not been destroyed. Claim
// exclusivity itself is enforced by the owning core.Entry's generation
// counter, not by this flag.
func (s *Session) IsAvailable() bool {
	return !s.destroyed.Load()
}

// CanBeRecycledForCallingThread reports whether token matches the owner
// most recently set by Bind.
func (s *Session) CanBeRecycledForCallingThread(token any) bool {
	if s.destroyed.Load() {
		return false
	}
	v, ok := s.owner.Load().(boxedToken)
	if !ok || v.token == nil {
		return false
	}
	return v.token == token
}
