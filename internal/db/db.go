// Package db opens the sqlite catalog database and keeps its schema current.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNeedsMigration is returned by CheckSchema when migrations are pending.
var ErrNeedsMigration = errors.New("catalog database requires migration")

// The catalog is written by one import at a time and read by every
// command, so WAL keeps readers unblocked during an import.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	path string
}

// Open opens the catalog database at path, creating its directory.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{DB: conn, path: path}, nil
}

// Exists reports whether a database file is present at path
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// versions lists the embedded migration files in apply order.
func versions() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	for i, name := range names {
		names[i] = strings.TrimPrefix(name, "migrations/")
	}
	sort.Strings(names)
	return names, nil
}

// Status describes which migrations have been applied
type Status struct {
	Applied []string `json:"applied"`
	Pending []string `json:"pending"`
}

// Current returns the last applied migration, or "none"
func (s Status) Current() string {
	if len(s.Applied) == 0 {
		return "none"
	}
	return s.Applied[len(s.Applied)-1]
}

// Status reads schema_migrations and compares it with the embedded files
func (db *DB) Status() (Status, error) {
	all, err := versions()
	if err != nil {
		return Status{}, err
	}

	var tables int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`).Scan(&tables); err != nil {
		return Status{}, fmt.Errorf("failed to look up schema_migrations: %w", err)
	}
	if tables == 0 {
		return Status{Pending: all}, nil
	}

	rows, err := db.Query(`SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return Status{}, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	var st Status
	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return Status{}, fmt.Errorf("failed to scan migration version: %w", err)
		}
		done[v] = true
		st.Applied = append(st.Applied, v)
	}
	if err := rows.Err(); err != nil {
		return Status{}, err
	}
	for _, v := range all {
		if !done[v] {
			st.Pending = append(st.Pending, v)
		}
	}
	return st, nil
}

// Migrate applies every pending migration, each in its own transaction,
// and returns the versions it applied.
func (db *DB) Migrate() ([]string, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	st, err := db.Status()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, v := range st.Pending {
		if err := db.apply(v); err != nil {
			return applied, err
		}
		applied = append(applied, v)
	}
	return applied, nil
}

func (db *DB) apply(version string) error {
	body, err := migrationsFS.ReadFile("migrations/" + version)
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", version, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", version, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", version, err)
	}
	return nil
}

// CheckSchema fails with ErrNeedsMigration when migrations are pending.
// The error names the database path and its current version.
func (db *DB) CheckSchema() error {
	st, err := db.Status()
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if len(st.Pending) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s (version: %s) has %d pending migration(s); run 'farmlistadm migrate'",
		ErrNeedsMigration, db.path, st.Current(), len(st.Pending))
}
