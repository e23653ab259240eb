package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return newTestDB(t, ":memory:")
}

// NewTestFileDB creates a database file in a temporary directory. Use it for
// tests that need more than one connection, such as concurrent transfers.
func NewTestFileDB(t testing.TB) *sql.DB {
	t.Helper()
	return newTestDB(t, filepath.Join(t.TempDir(), "qlts.sqlite3"))
}

func newTestDB(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
