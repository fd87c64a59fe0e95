package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestGetCurrentVersionFreshDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(nil), DialectSQLite)

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 for fresh database, got %d", version)
	}
}

func TestApplyMigrations(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_init.sql":      "CREATE TABLE profiles (canonical_name TEXT PRIMARY KEY);",
		"002_schedules.sql": "CREATE TABLE schedules (date TEXT PRIMARY KEY);",
	})
	runner := NewRunner(db, fsys, DialectSQLite)

	applied, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 applied migrations, got %d", applied)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2 after migrations, got %d", version)
	}

	for _, table := range []string{"profiles", "schedules"} {
		var count int
		err := db.QueryRow(
			"SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count)
		if err != nil || count != 1 {
			t.Errorf("table %s not created (count=%d, err=%v)", table, count, err)
		}
	}
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE profiles (canonical_name TEXT PRIMARY KEY);",
	})
	runner := NewRunner(db, fsys, DialectSQLite)

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("first ApplyMigrations failed: %v", err)
	}

	applied, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 migrations on second run, got %d", applied)
	}
}

func TestApplyMigrationsRollbackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_bad.sql": "CREATE TABLE broken (;",
	})
	runner := NewRunner(db, fsys, DialectSQLite)

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("expected failure for invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("version advanced despite failed migration: %d", version)
	}
}

func TestReadMigrationFilesRejectsBadNames(t *testing.T) {
	db := setupTestDB(t)

	cases := map[string]string{
		"noversion.sql":        "SELECT 1;",
		"abc_bad.sql":          "SELECT 1;",
		"000_belowminimum.sql": "SELECT 1;",
	}
	for filename, content := range cases {
		runner := NewRunner(db, migrationFS(map[string]string{filename: content}), DialectSQLite)
		if _, err := runner.ReadMigrationFiles(); err == nil {
			t.Errorf("expected error for filename %q", filename)
		}
	}
}

func TestReadMigrationFilesRejectsDuplicateVersions(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_first.sql":  "SELECT 1;",
		"001_second.sql": "SELECT 1;",
	})
	runner := NewRunner(db, fsys, DialectSQLite)

	if _, err := runner.ReadMigrationFiles(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate version error, got %v", err)
	}
}

func TestValidateVersionRejectsNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE profiles (canonical_name TEXT PRIMARY KEY);",
	})
	runner := NewRunner(db, fsys, DialectSQLite)

	if err := runner.EnsureSchemaVersionTable(); err != nil {
		t.Fatalf("EnsureSchemaVersionTable failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (99)"); err != nil {
		t.Fatalf("failed to set version: %v", err)
	}

	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected error for database newer than supported version")
	}
}
