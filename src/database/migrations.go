package database

import (
	"context"
	"fmt"
	"sort"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	Up          string
}

// Migrator applies registered migrations in version order.
type Migrator struct {
	db         *DB
	migrations []Migration
}

// NewMigrator creates a migrator with the platform schema registered.
func NewMigrator(db *DB) *Migrator {
	m := &Migrator{db: db}
	m.registerPlatformMigrations()
	return m
}

// Register adds a migration.
func (m *Migrator) Register(mig Migration) {
	m.migrations = append(m.migrations, mig)
}

func (m *Migrator) registerPlatformMigrations() {
	m.Register(Migration{
		Version:     1,
		Description: "projects table",
		Up: `CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			owner TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	})
	m.Register(Migration{
		Version:     2,
		Description: "project name index",
		Up:          `CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name)`,
	})
	m.Register(Migration{
		Version:     3,
		Description: "project status index",
		Up:          `CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
	})
	m.Register(Migration{
		Version:     4,
		Description: "audit log table",
		Up: `CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			actor TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
	})
}

// Migrate applies all pending migrations inside transactions and
// records each version in schema_version.
func (m *Migrator) Migrate(ctx context.Context) error {
	if _, err := m.db.Handle().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})

	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		tx, err := m.db.Handle().BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d: %w", mig.Version, err)
		}
		if _, err := tx.ExecContext(ctx, mig.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			m.db.Rebind(`INSERT INTO schema_version (version, description) VALUES (?, ?)`),
			mig.Version, mig.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: recording version: %w", mig.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) currentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.Handle().QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
