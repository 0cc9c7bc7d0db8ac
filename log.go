package sessionpool

import (
	"log/slog"

	"github.com/sessionpool/sessionpool/internal/core"
)

// SetLogger replaces the package-level logger used by sessionpool.
// This allows applications to integrate sessionpool logging with their own
// logging infrastructure. The provided logger should already have any
// desired logger-wide attributes; sessionpool does not add a component
// attribute to it, and only attaches per-record attributes such as the
// entry id and error.
//
// If l is nil, the logger resets to the default: slog.Default() with the
// "component" attribute, re-derived on the next Logger() call and then
// cached. Call SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other sessionpool operations.
//
// Example:
//
//	sessionpool.SetLogger(myLogger.With("component", "sessionpool"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
