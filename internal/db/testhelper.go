package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated SQLite database in t.TempDir() and
// registers cleanup.
func OpenTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunSQLiteMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
