package contextstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/keeperhq/memorybank/internal/errortypes"
	"github.com/keeperhq/memorybank/internal/vector"
)

func newTestStore(t *testing.T) *SQLiteContextStore {
	t.Helper()
	store := NewSQLiteContextStore()
	if err := store.Initialize(filepath.Join(t.TempDir(), "context.db")); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustStore(t *testing.T, store *SQLiteContextStore, id, text string, embedding []float32) {
	t.Helper()
	blob, err := vector.Float32SliceToBytes(embedding)
	if err != nil {
		t.Fatalf("failed to encode embedding: %v", err)
	}
	if err := store.Store(id, text, blob, time.Now()); err != nil {
		t.Fatalf("Store(%q) error: %v", id, err)
	}
}

func TestStoreAndSearch(t *testing.T) {
	store := newTestStore(t)

	mustStore(t, store, "near", "about databases", []float32{1, 0, 0})
	mustStore(t, store, "mid", "about servers", []float32{0.7, 0.7, 0})
	mustStore(t, store, "far", "about cooking", []float32{0, 0, 1})

	results, err := store.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "near" || results[1].ID != "mid" {
		t.Errorf("expected [near mid], got [%s %s]", results[0].ID, results[1].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("expected descending scores, got %v then %v", results[0].Score, results[1].Score)
	}
	if results[0].SummaryText != "about databases" {
		t.Errorf("expected summary text to round-trip, got %q", results[0].SummaryText)
	}
}

func TestSearchLimitExceedsRows(t *testing.T) {
	store := newTestStore(t)
	mustStore(t, store, "only", "one entry", []float32{1, 0, 0})

	results, err := store.Search([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Search(nil, 5)
	if !errortypes.IsType(err, errortypes.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoreOverwritesSameID(t *testing.T) {
	store := newTestStore(t)

	mustStore(t, store, "a", "old text", []float32{1, 0, 0})
	mustStore(t, store, "a", "new text", []float32{1, 0, 0})

	results, err := store.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 entry after overwrite, got %d", len(results))
	}
	if results[0].SummaryText != "new text" {
		t.Errorf("expected overwritten text, got %q", results[0].SummaryText)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	mustStore(t, store, "a", "to be deleted", []float32{1, 0, 0})

	found, err := store.Delete("a")
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if !found {
		t.Errorf("expected Delete to report the entry was removed")
	}

	found, err = store.Delete("a")
	if err != nil {
		t.Fatalf("second Delete() error: %v", err)
	}
	if found {
		t.Errorf("expected Delete to report a missing entry")
	}

	results, err := store.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no entries after delete, got %d", len(results))
	}
}

func TestReplace(t *testing.T) {
	store := newTestStore(t)
	mustStore(t, store, "a", "original", []float32{1, 0, 0})

	blob, err := vector.Float32SliceToBytes([]float32{0, 1, 0})
	if err != nil {
		t.Fatalf("failed to encode embedding: %v", err)
	}

	found, err := store.Replace("a", "replacement", blob, time.Now())
	if err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if !found {
		t.Errorf("expected Replace to find the entry")
	}

	results, err := store.Search([]float32{0, 1, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].SummaryText != "replacement" {
		t.Fatalf("expected the replaced entry, got %+v", results)
	}

	found, err = store.Replace("missing", "text", blob, time.Now())
	if err != nil {
		t.Fatalf("Replace() for missing id error: %v", err)
	}
	if found {
		t.Errorf("expected Replace to report a missing entry")
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	mustStore(t, store, "a", "entry a", []float32{1, 0, 0})
	mustStore(t, store, "b", "entry b", []float32{0, 1, 0})

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	results, err := store.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no entries after clear, got %d", len(results))
	}
}
