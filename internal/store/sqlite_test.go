package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.Get(ctx, "current-viewer-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "current-viewer-id", []byte("user-3")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get(ctx, "current-viewer-id")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "user-3" {
		t.Fatalf("unexpected value: %q", got)
	}

	if err := store.Set(ctx, "current-viewer-id", []byte("user-4")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = store.Get(ctx, "current-viewer-id")
	if string(got) != "user-4" {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	if err := store.Delete(ctx, "current-viewer-id"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "current-viewer-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "current-viewer-id"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	key := SessionKey("sess-1", "mock-interview-config")
	if key != "session/sess-1/mock-interview-config" {
		t.Fatalf("unexpected session key: %s", key)
	}

	in := domain.InterviewConfig{Category: "technical", Difficulty: "mixed", QuestionCount: 5, Mode: domain.InterviewModeTimed}
	if err := SetJSON(ctx, store, key, in); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var out domain.InterviewConfig
	if err := GetJSON(ctx, store, key, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out != in {
		t.Fatalf("unexpected config: %+v", out)
	}

	if err := store.Set(ctx, key, []byte("{not json")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := GetJSON(ctx, store, key, &out); !errors.Is(err, domain.ErrStorageRead) {
		t.Fatalf("expected ErrStorageRead, got %v", err)
	}
}
