package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestStore creates a Store backed by an in-memory database for a
// single test's scope.
func setupTestStore(tb testing.TB) *Store {
	tb.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", tb.Name()))
	if err != nil {
		tb.Fatalf("failed to open in-memory db: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err = SetupSchema(db); err != nil {
		tb.Fatalf("failed to setup catalog schema: %v", err)
	}
	return NewStore(db)
}

func TestStore_UpsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	e := Entry{ID: "11", Title: "Conditional Logic", Focus: "count and for_each"}
	if err := store.Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "11")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != e {
		t.Errorf("Get returned %+v, want %+v", got, e)
	}

	// Upsert with the same id updates in place.
	e.Focus = "updated focus"
	if err = store.Upsert(ctx, e); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	got, err = store.Get(ctx, "11")
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if got.Focus != "updated focus" {
		t.Errorf("update did not stick: got focus %q", got.Focus)
	}

	if _, err = store.Get(ctx, "99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get for a missing id: got %v, want ErrNotFound", err)
	}

	if err = store.Upsert(ctx, Entry{ID: "", Title: "x"}); err == nil {
		t.Error("Upsert accepted an entry without an id")
	}
}

func TestStore_ListOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ids := []string{"20", "11", "15"}
	for _, id := range ids {
		if err := store.Upsert(ctx, Entry{ID: id, Title: "Problem " + id}); err != nil {
			t.Fatalf("Upsert %q failed: %v", id, err)
		}
	}

	// Updating an existing entry must not move it to the end.
	if err := store.Upsert(ctx, Entry{ID: "20", Title: "Capstone Project"}); err != nil {
		t.Fatalf("update Upsert failed: %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, id := range ids {
		if entries[i].ID != id {
			t.Errorf("entry %d: got id %q, want %q", i, entries[i].ID, id)
		}
	}
	if entries[0].Title != "Capstone Project" {
		t.Errorf("update did not apply: got title %q", entries[0].Title)
	}
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, Entry{ID: "11", Title: "Conditional Logic"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Delete(ctx, "11"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "11"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestStore_Import(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Import(ctx, DefaultEntries()); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != len(DefaultEntries()) {
		t.Errorf("Count = %d, want %d", n, len(DefaultEntries()))
	}

	// A second import of the same entries is a no-op update, not a
	// duplication.
	if err = store.Import(ctx, DefaultEntries()); err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	n, _ = store.Count(ctx)
	if n != len(DefaultEntries()) {
		t.Errorf("Count after re-import = %d, want %d", n, len(DefaultEntries()))
	}

	if err = store.Import(ctx, []Entry{{ID: "1", Title: "A"}, {ID: "1", Title: "B"}}); err == nil {
		t.Error("Import accepted a catalog with duplicate ids")
	}
}
