package board

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTempStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn, err := SQLiteFileDSN(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("dsn error: %v", err)
	}
	store, err := NewSQLStore(dsn)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLStore_EmptyDSN(t *testing.T) {
	if _, err := NewSQLStore(""); err != ErrBackendNotConfigured {
		t.Fatalf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestSQLStore_CreateDefaults(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	got, err := store.Upsert(ctx, TaskPatch{ID: "t_1", Title: strptr("Ship")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.Title != "Ship" || got.Assignee != AssigneeNone || got.Status != StatusBacklog || got.Priority != PriorityMed {
		t.Fatalf("create defaults wrong: %+v", got)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("createdAt must equal updatedAt on create: %+v", got)
	}

	list, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if len(list) != 1 || list[0].ID != "t_1" {
		t.Fatalf("expected the created task back, got %+v", list)
	}
	if !list[0].CreatedAt.Equal(got.CreatedAt) {
		t.Fatalf("persisted createdAt differs: %v vs %v", list[0].CreatedAt, got.CreatedAt)
	}
}

func TestSQLStore_PatchPreservesCreatedAt(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	created, err := store.Upsert(ctx, TaskPatch{ID: "t_1", Title: strptr("Ship"), Description: strptr("v1")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	time.Sleep(2 * time.Millisecond) // keep updatedAt strictly ahead
	patched, err := store.Upsert(ctx, TaskPatch{ID: "t_1", Status: statusptr(StatusDone)})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	if !patched.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt moved: %v -> %v", created.CreatedAt, patched.CreatedAt)
	}
	if !patched.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updatedAt did not advance: %v -> %v", created.UpdatedAt, patched.UpdatedAt)
	}
	if patched.Title != "Ship" || patched.Description != "v1" {
		t.Errorf("unpatched fields lost: %+v", patched)
	}
	if patched.Status != StatusDone {
		t.Errorf("status = %q, want done", patched.Status)
	}
}

func TestSQLStore_ReadAllOrderedByUpdatedAtDesc(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	for _, id := range []string{"t_a", "t_b", "t_c"} {
		if _, err := store.Upsert(ctx, TaskPatch{ID: id, Title: strptr(id)}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	// touching t_a makes it the most recently updated
	if _, err := store.Upsert(ctx, TaskPatch{ID: "t_a", Status: statusptr(StatusTodo)}); err != nil {
		t.Fatalf("touch: %v", err)
	}

	list, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(list))
	}
	if list[0].ID != "t_a" || list[1].ID != "t_c" || list[2].ID != "t_b" {
		t.Fatalf("unexpected order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestSQLStore_DeleteIdempotent(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	if _, err := store.Upsert(ctx, TaskPatch{ID: "t_1", Title: strptr("keep")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Upsert(ctx, TaskPatch{ID: "t_2", Title: strptr("drop")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := store.Delete(ctx, "t_missing"); err != nil {
		t.Fatalf("deleting an absent id must succeed: %v", err)
	}
	if err := store.Delete(ctx, "t_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "t_2"); err != nil {
		t.Fatalf("repeated delete must succeed: %v", err)
	}

	list, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if len(list) != 1 || list[0].ID != "t_1" {
		t.Fatalf("expected only t_1 to remain, got %+v", list)
	}
}

func TestSQLStore_NullDescriptionRoundTrip(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	if _, err := store.Upsert(ctx, TaskPatch{ID: "t_1", Title: strptr("no desc")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	list, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if list[0].Description != "" {
		t.Fatalf("expected empty description, got %q", list[0].Description)
	}
}
