// Package postgres implements store.Store on a PostgreSQL CMS database
// through gorm.
//
// Rows are written through gorm's map-based Create and Updates on a named
// table, so no model structs are needed for the snippet and global variable
// tables.
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/steveyegge/snipsync/internal/store"
)

// DB wraps a gorm connection and implements store.Store.
type DB struct {
	gdb *gorm.DB
}

var _ store.Store = (*DB)(nil)

// Open connects to the database described by dsn.
//
// If logger is non-nil, slow queries and errors are reported through it.
func Open(dsn string, logger *log.Logger) (*DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Discard,
	}
	if logger != nil {
		cfg.Logger = gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	gdb, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{gdb: gdb}, nil
}

// New wraps an existing gorm connection.
func New(gdb *gorm.DB) *DB {
	return &DB{gdb: gdb}
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// InitSchema creates the given record tables if they don't exist.
func (db *DB) InitSchema(ctx context.Context, tables ...store.TableSpec) error {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		stmts := []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				%s SERIAL PRIMARY KEY,
				site_id INTEGER NOT NULL DEFAULT 1,
				%s TEXT NOT NULL,
				%s TEXT NOT NULL DEFAULT ''
			)`, t.Name, t.IDColumn, t.KeyColumn, t.ContentsColumn),
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_%[2]s ON %[1]s (site_id, %[2]s)`,
				t.Name, t.KeyColumn),
		}
		for _, stmt := range stmts {
			if err := db.gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to initialize table %s: %w", t.Name, err)
			}
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

	var count int64
	err := db.gdb.WithContext(ctx).
		Table(table).
		Where(keyEq(keyColumn, value)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return int(count), nil
}

// Insert implements store.Store.
func (db *DB) Insert(ctx context.Context, table string, row store.Row) error {
	if err := store.ValidateRow(table, row); err != nil {
		return err
	}

	if err := db.gdb.WithContext(ctx).Table(table).Create(toMap(row)).Error; err != nil {
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

	err := db.gdb.WithContext(ctx).
		Table(table).
		Where(keyEq(keyColumn, value)).
		Updates(toMap(row)).Error
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

// CountAll returns the number of rows in table.
func (db *DB) CountAll(ctx context.Context, table string) (int, error) {
	if err := store.ValidateIdentifier(table); err != nil {
		return 0, err
	}

	var count int64
	if err := db.gdb.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return int(count), nil
}

func keyEq(column, value string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

func toMap(row store.Row) map[string]interface{} {
	m := make(map[string]interface{}, len(row))
	for k, v := range row {
		m[k] = v
	}
	return m
}
