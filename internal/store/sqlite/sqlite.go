// Package sqlite provides an embedded SQLite implementation of store.Store.
//
// The database runs in embedded mode through ncruces/go-sqlite3 (a WASM build
// of SQLite, no cgo) with WAL enabled. It is the default backend for local
// authoring setups and for tests; production CMS databases are reached through
// store/postgres instead.
//
// Tables are addressed by name on every call, so one DB serves both the
// snippets and the global variables tables:
//
//	database, err := sqlite.Open(".snipsync/cms.db")
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
//
//	n, err := database.CountByKey(ctx, "snippets", "snippet_name", "header")
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/steveyegge/snipsync/internal/store"
)

// DB wraps a SQLite connection and implements store.Store.
type DB struct {
	conn *sql.DB
	path string
}

var _ store.Store = (*DB)(nil)

// Open creates a new database connection at the specified path.
//
// The parent directory is created if needed. A "file:" prefix on path is
// accepted. The caller MUST call Close() when done.
func Open(path string) (*DB, error) {
	path = strings.TrimPrefix(path, "file:")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{
		conn: conn,
		path: path,
	}

	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// RawDB returns the underlying sql.DB connection.
func (db *DB) RawDB() *sql.DB {
	return db.conn
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the given record tables if they don't exist.
//
// Each table gets an autoincrement id, a site_id defaulting to 1, the key
// column and the contents column, plus a unique index on (site_id, key).
// Safe to call multiple times.
func (db *DB) InitSchema(ctx context.Context, tables ...store.TableSpec) error {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			%[2]s INTEGER PRIMARY KEY AUTOINCREMENT,
			site_id INTEGER NOT NULL DEFAULT 1,
			%[3]s TEXT NOT NULL,
			%[4]s TEXT NOT NULL DEFAULT ''
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_%[3]s ON %[1]s(site_id, %[3]s);
		`, t.Name, t.IDColumn, t.KeyColumn, t.ContentsColumn)

		if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to initialize table %s: %w", t.Name, err)
		}
	}
	return nil
}

// CountByKey implements store.Store.
func (db *DB) CountByKey(ctx context.Context, table, keyColumn, value string) (int, error) {
	if err := store.ValidateIdentifier(table); err != nil {
		return 0, err
	}
	if err := store.ValidateIdentifier(keyColumn); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, table, keyColumn)

	var count int
	if err := db.conn.QueryRowContext(ctx, query, value).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return count, nil
}

// Insert implements store.Store.
func (db *DB) Insert(ctx context.Context, table string, row store.Row) error {
	if err := store.ValidateRow(table, row); err != nil {
		return err
	}

	cols := row.Columns()
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		args[i] = row[c]
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// UpdateByKey implements store.Store.
func (db *DB) UpdateByKey(ctx context.Context, table, keyColumn, value string, row store.Row) error {
	if err := store.ValidateRow(table, row); err != nil {
		return err
	}
	if err := store.ValidateIdentifier(keyColumn); err != nil {
		return err
	}

	cols := row.Columns()
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, row[c])
	}
	args = append(args, value)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = ?`,
		table, strings.Join(sets, ", "), keyColumn)

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

// CountAll returns the number of rows in table.
func (db *DB) CountAll(ctx context.Context, table string) (int, error) {
	if err := store.ValidateIdentifier(table); err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return count, nil
}

// Lookup returns column of the first row whose keyColumn equals value.
// The bool is false when no row matches.
func (db *DB) Lookup(ctx context.Context, table, keyColumn, value, column string) (string, bool, error) {
	for _, name := range []string{table, keyColumn, column} {
		if err := store.ValidateIdentifier(name); err != nil {
			return "", false, err
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? LIMIT 1`, column, table, keyColumn)

	var out string
	err := db.conn.QueryRowContext(ctx, query, value).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return out, true, nil
}
