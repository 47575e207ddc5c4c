package db

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a fresh database in a temp dir and applies the
// repo migrations.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.MigrateUp("../../migrations"); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	return db
}
