package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/steveyegge/snipsync/internal/store"
)

var snippetsSpec = store.TableSpec{
	Name:           "snippets",
	IDColumn:       "snippet_id",
	KeyColumn:      "snippet_name",
	ContentsColumn: "snippet_contents",
}

// openTestDB opens a fresh database with the snippets table created.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.InitSchema(context.Background(), snippetsSpec); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return db
}

func TestOpen_AcceptsFilePrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cms.db")
	db, err := Open("file:" + path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.InitSchema(ctx, snippetsSpec); err != nil {
		t.Errorf("second InitSchema() failed: %v", err)
	}

	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, "snippets").Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Errorf("snippets table count = %d, want 1", count)
	}
}

func TestInitSchema_RejectsBadNames(t *testing.T) {
	db := openTestDB(t)
	bad := snippetsSpec
	bad.Name = "snippets; DROP TABLE snippets"

	err := db.InitSchema(context.Background(), bad)
	if !errors.Is(err, store.ErrInvalidIdentifier) {
		t.Errorf("InitSchema() = %v, want ErrInvalidIdentifier", err)
	}
}

func TestInsertCountLookup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.CountByKey(ctx, "snippets", "snippet_name", "header")
	if err != nil {
		t.Fatalf("CountByKey() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("CountByKey() before insert = %d, want 0", n)
	}

	row := store.Row{"snippet_name": "header", "snippet_contents": "<h1>{title}</h1>"}
	if err := db.Insert(ctx, "snippets", row); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	n, err = db.CountByKey(ctx, "snippets", "snippet_name", "header")
	if err != nil {
		t.Fatalf("CountByKey() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByKey() after insert = %d, want 1", n)
	}

	got, ok, err := db.Lookup(ctx, "snippets", "snippet_name", "header", "snippet_contents")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if !ok {
		t.Fatal("Lookup() found no row")
	}
	if got != "<h1>{title}</h1>" {
		t.Errorf("Lookup() = %q, want %q", got, "<h1>{title}</h1>")
	}

	_, ok, err = db.Lookup(ctx, "snippets", "snippet_name", "missing", "snippet_contents")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if ok {
		t.Error("Lookup() of missing key reported a row")
	}
}

func TestUpdateByKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Insert(ctx, "snippets", store.Row{"snippet_name": "footer", "snippet_contents": "old"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if err := db.Insert(ctx, "snippets", store.Row{"snippet_name": "other", "snippet_contents": "keep"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	if err := db.UpdateByKey(ctx, "snippets", "snippet_name", "footer", store.Row{"snippet_contents": "new"}); err != nil {
		t.Fatalf("UpdateByKey() failed: %v", err)
	}

	got, _, err := db.Lookup(ctx, "snippets", "snippet_name", "footer", "snippet_contents")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got != "new" {
		t.Errorf("footer contents = %q, want %q", got, "new")
	}

	got, _, err = db.Lookup(ctx, "snippets", "snippet_name", "other", "snippet_contents")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got != "keep" {
		t.Errorf("other contents = %q, want %q", got, "keep")
	}

	total, err := db.CountAll(ctx, "snippets")
	if err != nil {
		t.Fatalf("CountAll() failed: %v", err)
	}
	if total != 2 {
		t.Errorf("CountAll() = %d, want 2", total)
	}
}

func TestEmptyKeyIsStorable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Insert(ctx, "snippets", store.Row{"snippet_name": "", "snippet_contents": "x"}); err != nil {
		t.Fatalf("Insert() with empty key failed: %v", err)
	}
	n, err := db.CountByKey(ctx, "snippets", "snippet_name", "")
	if err != nil {
		t.Fatalf("CountByKey() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByKey(\"\") = %d, want 1", n)
	}
}

func TestInsert_MissingTable(t *testing.T) {
	db := openTestDB(t)

	err := db.Insert(context.Background(), "nope", store.Row{"a": "b"})
	if err == nil {
		t.Fatal("Insert() into missing table succeeded")
	}
}

func TestClose_Twice(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
