// Package persist stores drawings in SQLite.
//
// A drawing is saved under a name as the JSON of its entities together
// with the serialised spatial index, so a load does not rebuild the tree.
//
//	db, err := persist.Open("vecstorm.db")
//	repo, err := persist.NewRepository(ctx, db)
//	err = repo.Save(ctx, "plan", st.Document())
//
// In tests:
//
//	db := persist.OpenMemory(t)
package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

type config struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
}

func defaults() config {
	return config{
		busyTimeout: 10_000,
		synchronous: "NORMAL",
	}
}

// Option customises Open.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates the parent directories of the database file.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// Open opens the database at path and applies the pragmas.
func Open(path string, opts ...Option) (*sql.DB, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("persist: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open: %w", err)
	}
	if err := applyPragmas(db, &cfg); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: ping: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory database for tests. It is limited to one
// connection, since every connection to ":memory:" is a separate
// database, and closed when the test ends.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("persist.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func applyPragmas(db *sql.DB, cfg *config) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("persist: %s: %w", p, err)
		}
	}
	return nil
}
