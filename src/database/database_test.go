package database

import (
	"context"
	"testing"

	"github.com/phantom-spire/core-studio/src/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNormalizeDriver(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sqlite3", "sqlite"},
		{"SQLite", "sqlite"},
		{"postgres", "pgx"},
		{"postgresql", "pgx"},
		{"mariadb", "mysql"},
		{"mssql", "sqlserver"},
		{"turso", "libsql"},
	}
	for _, tt := range tests {
		if got := normalizeDriver(tt.in); got != tt.want {
			t.Errorf("normalizeDriver(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenRequiresDSNForRemoteDrivers(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlserver", "libsql"} {
		if _, err := Open(config.DatabaseConfig{Driver: driver}); err == nil {
			t.Errorf("Expected error for %s without DSN", driver)
		}
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := NewMigrator(db).Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Re-running is a no-op.
	if err := NewMigrator(db).Migrate(ctx); err != nil {
		t.Fatalf("Second Migrate: %v", err)
	}

	var count int
	if err := db.Handle().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		t.Fatalf("Querying schema_version: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected 4 applied migrations, got %d", count)
	}

	// The projects table must be queryable after migration.
	if _, err := db.Handle().ExecContext(ctx,
		`SELECT id, name, status FROM projects WHERE 1=0`); err != nil {
		t.Errorf("projects table not usable: %v", err)
	}
}

func TestRebind(t *testing.T) {
	db := &DB{driver: "pgx"}
	got := db.Rebind(`SELECT * FROM projects WHERE status = ? AND owner = ?`)
	want := `SELECT * FROM projects WHERE status = $1 AND owner = $2`
	if got != want {
		t.Errorf("Rebind pgx:\n got %s\nwant %s", got, want)
	}

	db = &DB{driver: "sqlite"}
	query := `SELECT * FROM projects WHERE id = ?`
	if got := db.Rebind(query); got != query {
		t.Errorf("Expected sqlite query unchanged, got %s", got)
	}
}
