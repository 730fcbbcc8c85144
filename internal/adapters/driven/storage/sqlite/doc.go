// Package sqlite provides a SQLite-backed conversation store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Conversation memory kept here survives server restarts; the in-memory
// store loses it.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.pdfiq/data/memory.db
//
// # Thread Safety
//
// All operations are thread-safe. Append runs its insert and eviction in one
// transaction, and SQLite in WAL mode serialises writers.
package sqlite
