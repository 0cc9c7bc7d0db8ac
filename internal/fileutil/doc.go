// Package fileutil provides directory-management utilities.
//
// EnsureDir and EnsureDirForFile create directories recursively; the
// sqlbackend reference backend uses them when configured with a file-backed
// SQLite path instead of the default shared in-memory database.
package fileutil
