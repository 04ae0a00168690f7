// Package store defines the narrow record-store contract used by the sync
// engine and helpers shared by its implementations.
//
// Implementations live in subpackages:
//   - store/sqlite: embedded SQLite database (ncruces/go-sqlite3)
//   - store/postgres: the CMS database reached through gorm
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrInvalidIdentifier is returned when a table or column name is not a
// plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

// Row maps column names to text values.
type Row map[string]string

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Store is a table-oriented record store keyed by a single column.
//
// Each call is its own unit of work; there is no transaction spanning calls.
type Store interface {
	// CountByKey returns the number of rows in table whose keyColumn equals value.
	CountByKey(ctx context.Context, table, keyColumn, value string) (int, error)

	// Insert adds row to table.
	Insert(ctx context.Context, table string, row Row) error

	// UpdateByKey sets the columns in row on every row of table whose
	// keyColumn equals value.
	UpdateByKey(ctx context.Context, table, keyColumn, value string, row Row) error
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier reports an error wrapping ErrInvalidIdentifier if name
// cannot be used unquoted as a table or column name.
func ValidateIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// ValidateRow validates the table name and every column of row.
func ValidateRow(table string, row Row) error {
	if err := ValidateIdentifier(table); err != nil {
		return err
	}
	if len(row) == 0 {
		return fmt.Errorf("empty row for table %s", table)
	}
	for _, c := range row.Columns() {
		if err := ValidateIdentifier(c); err != nil {
			return err
		}
	}
	return nil
}

// TableSpec describes a record table by its column names.
type TableSpec struct {
	Name           string
	IDColumn       string
	KeyColumn      string
	ContentsColumn string
}

// Validate checks every table and column name.
func (s TableSpec) Validate() error {
	for _, name := range []string{s.Name, s.IDColumn, s.KeyColumn, s.ContentsColumn} {
		if err := ValidateIdentifier(name); err != nil {
			return fmt.Errorf("table %s: %w", s.Name, err)
		}
	}
	return nil
}
