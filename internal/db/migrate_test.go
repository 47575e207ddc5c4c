package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// setupMigrationTestDB opens a bare database without applying the repo
// schema, so migration state starts empty.
func setupMigrationTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "migrate_test.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return &DB{sqlDB}
}

// setupTestMigrations writes a two-step migration set into a temp dir.
func setupTestMigrations(t *testing.T) string {
	t.Helper()

	tmpDir := filepath.Join(t.TempDir(), "migrations")
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		t.Fatalf("failed to create temp migrations dir: %v", err)
	}

	migrations := map[string]string{
		"000001_create_test_table.up.sql": `
			CREATE TABLE IF NOT EXISTS test_table (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);
		`,
		"000001_create_test_table.down.sql": `
			DROP TABLE IF EXISTS test_table;
		`,
		"000002_add_test_column.up.sql": `
			ALTER TABLE test_table ADD COLUMN description TEXT;
		`,
		"000002_add_test_column.down.sql": `
			CREATE TABLE test_table_new (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);
			INSERT INTO test_table_new (id, name) SELECT id, name FROM test_table;
			DROP TABLE test_table;
			ALTER TABLE test_table_new RENAME TO test_table;
		`,
	}

	for name, content := range migrations {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write migration %s: %v", name, err)
		}
	}

	return tmpDir
}

func TestMigrateUpAndVersion(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion on fresh DB failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("fresh DB version = %d dirty = %v, want 0 false", version, dirty)
	}

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	version, dirty, err = db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("version after up = %d dirty = %v, want 2 false", version, dirty)
	}

	// Second column exists after migration 2.
	if _, err := db.Exec(`INSERT INTO test_table (name, description) VALUES ('a', 'b')`); err != nil {
		t.Errorf("schema missing migrated column: %v", err)
	}

	// Up again is a no-op.
	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Errorf("repeated MigrateUp failed: %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	if err := db.MigrateDown(migrationsDir); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	version, _, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("version after down = %d, want 1", version)
	}

	if _, err := db.Exec(`INSERT INTO test_table (name, description) VALUES ('a', 'b')`); err == nil {
		t.Error("description column should be gone after rollback")
	}
}

func TestMigrateForce(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	if err := db.MigrateForce(migrationsDir, 1); err != nil {
		t.Fatalf("MigrateForce failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("forced version = %d dirty = %v, want 1 false", version, dirty)
	}
}

func TestRepoMigrationsApply(t *testing.T) {
	db := setupMigrationTestDB(t)

	if err := db.MigrateUp("../../migrations"); err != nil {
		t.Fatalf("repo migrations failed: %v", err)
	}

	for _, table := range []string{"samples", "calibration_runs", "category_bias", "correction_models"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}
