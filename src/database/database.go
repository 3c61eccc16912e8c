// Package database opens and manages the platform database used for
// project persistence. Multiple SQL backends are supported behind
// database/sql; sqlite is the zero-config default.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phantom-spire/core-studio/src/config"

	_ "github.com/go-sql-driver/mysql"                   // MySQL/MariaDB
	_ "github.com/jackc/pgx/v5/stdlib"                   // PostgreSQL
	_ "github.com/microsoft/go-mssqldb"                  // MSSQL
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libSQL/Turso
	_ "modernc.org/sqlite"                               // SQLite
)

// normalizeDriver maps config aliases to Go driver names.
func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "libsql", "turso":
		return "libsql"
	case "postgres", "postgresql", "pgsql", "pgx":
		return "pgx"
	case "mysql", "mariadb":
		return "mysql"
	case "mssql", "sqlserver":
		return "sqlserver"
	default:
		return driver
	}
}

// DB wraps the platform database connection.
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and verifies the
// connection. For sqlite the database file lives under DataDir.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	driver := normalizeDriver(cfg.Driver)

	dsn := cfg.DSN
	switch driver {
	case "sqlite":
		if dsn == "" {
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			dsn = filepath.Join(cfg.DataDir, "platform.db")
		}
	case "libsql", "pgx", "mysql", "sqlserver":
		if dsn == "" {
			return nil, fmt.Errorf("driver %s requires a DSN in config", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	handle, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if cfg.MaxOpen > 0 {
		handle.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		handle.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.Lifetime > 0 {
		handle.SetConnMaxLifetime(time.Duration(cfg.Lifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &DB{db: handle, driver: driver}, nil
}

// Handle returns the underlying sql.DB.
func (d *DB) Handle() *sql.DB { return d.db }

// Driver returns the normalized driver name.
func (d *DB) Driver() string { return d.driver }

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() error { return d.db.Close() }

// Rebind converts ?-style placeholders to the driver's dialect.
// sqlite, libsql and mysql take ? as-is.
func (d *DB) Rebind(query string) string {
	switch d.driver {
	case "pgx":
		return rebindNumbered(query, "$")
	case "sqlserver":
		return rebindNumbered(query, "@p")
	default:
		return query
	}
}

func rebindNumbered(query, prefix string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "%s%d", prefix, n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
