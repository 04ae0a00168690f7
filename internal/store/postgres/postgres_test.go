package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/steveyegge/snipsync/internal/store"
)

// openTestDB connects to SNIPSYNC_TEST_POSTGRES_DSN or skips the test.
func openTestDB(t *testing.T) (*DB, store.TableSpec) {
	t.Helper()

	dsn := os.Getenv("SNIPSYNC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SNIPSYNC_TEST_POSTGRES_DSN not set")
	}

	db, err := Open(dsn, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	tbl := store.TableSpec{
		Name:           fmt.Sprintf("test_snippets_%d", time.Now().UnixNano()),
		IDColumn:       "snippet_id",
		KeyColumn:      "snippet_name",
		ContentsColumn: "snippet_contents",
	}
	if err := db.InitSchema(context.Background(), tbl); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.gdb.Exec("DROP TABLE IF EXISTS " + tbl.Name).Error
		_ = db.Close()
	})
	return db, tbl
}

func TestRejectsBadIdentifiers(t *testing.T) {
	db := &DB{}
	ctx := context.Background()

	if _, err := db.CountByKey(ctx, "bad table", "k", "v"); !errors.Is(err, store.ErrInvalidIdentifier) {
		t.Errorf("CountByKey() = %v, want ErrInvalidIdentifier", err)
	}
	if err := db.Insert(ctx, "t", store.Row{"bad col": "v"}); !errors.Is(err, store.ErrInvalidIdentifier) {
		t.Errorf("Insert() = %v, want ErrInvalidIdentifier", err)
	}
	if err := db.UpdateByKey(ctx, "t", "bad key", "v", store.Row{"c": "v"}); !errors.Is(err, store.ErrInvalidIdentifier) {
		t.Errorf("UpdateByKey() = %v, want ErrInvalidIdentifier", err)
	}
}

func TestInsertThenUpdate(t *testing.T) {
	db, tbl := openTestDB(t)
	ctx := context.Background()

	if err := db.Insert(ctx, tbl.Name, store.Row{tbl.KeyColumn: "header", tbl.ContentsColumn: "v1"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	n, err := db.CountByKey(ctx, tbl.Name, tbl.KeyColumn, "header")
	if err != nil {
		t.Fatalf("CountByKey() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByKey() = %d, want 1", n)
	}

	if err := db.UpdateByKey(ctx, tbl.Name, tbl.KeyColumn, "header", store.Row{tbl.ContentsColumn: "v2"}); err != nil {
		t.Fatalf("UpdateByKey() failed: %v", err)
	}

	var got string
	err = db.gdb.Table(tbl.Name).
		Select(tbl.ContentsColumn).
		Where(keyEq(tbl.KeyColumn, "header")).
		Scan(&got).Error
	if err != nil {
		t.Fatalf("failed to read row: %v", err)
	}
	if got != "v2" {
		t.Errorf("contents = %q, want %q", got, "v2")
	}

	total, err := db.CountAll(ctx, tbl.Name)
	if err != nil {
		t.Fatalf("CountAll() failed: %v", err)
	}
	if total != 1 {
		t.Errorf("CountAll() = %d, want 1", total)
	}
}
