package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasklet/pkg/models"
)

// tempDBPath returns a path to a temp database file.
func tempDBPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "test.db")
}

// setupTestDB creates a new temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestOpen(t *testing.T) {
	path := tempDBPath(t)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("database file does not exist at %s", path)
	}
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	path := filepath.Join(nested, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nested); os.IsNotExist(err) {
		t.Errorf("parent directories not created: %s", nested)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	// Running migrations again should be a no-op.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestTaskRecord_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &TaskRecord{
		ID:        "task-1",
		Prompt:    "Plan a birthday party",
		Status:    models.TaskStatusPending,
		CreatedAt: created,
	}

	if err := db.CreateTask(record); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := db.GetTask("task-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetTask returned nil for existing task")
	}
	if got.Prompt != record.Prompt {
		t.Errorf("prompt = %q, want %q", got.Prompt, record.Prompt)
	}
	if got.Status != models.TaskStatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestTaskRecord_GetMissing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetTask("nope")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got != nil {
		t.Error("GetTask should return nil for unknown id")
	}
}

func TestTaskRecord_DuplicateID(t *testing.T) {
	db := setupTestDB(t)

	r := &TaskRecord{ID: "dup", Prompt: "p", Status: models.TaskStatusPending, CreatedAt: time.Now()}
	if err := db.CreateTask(r); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := db.CreateTask(r); err == nil {
		t.Error("duplicate task id should be rejected")
	}
}

func TestListTasks_NewestFirst(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		r := &TaskRecord{
			ID:        id,
			Prompt:    "p",
			Status:    models.TaskStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.CreateTask(r); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}

	records, err := db.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].ID != "new" || records[2].ID != "old" {
		t.Errorf("unexpected order: %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestTaskStorage_PutGet(t *testing.T) {
	db := setupTestDB(t)

	store, err := db.OpenStore("task-1")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	if _, ok, err := store.Get("status"); ok || err != nil {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := store.Put("status", []byte(`"pending"`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, ok, err := store.Get("status")
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if string(value) != `"pending"` {
		t.Errorf("value = %s", value)
	}

	// Upsert replaces the previous value.
	if err := store.Put("status", []byte(`"processing"`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, _, _ = store.Get("status")
	if string(value) != `"processing"` {
		t.Errorf("value after upsert = %s", value)
	}
}

func TestTaskStorage_ScopedByTask(t *testing.T) {
	db := setupTestDB(t)

	s1, _ := db.OpenStore("task-1")
	s2, _ := db.OpenStore("task-2")

	if err := s1.Put("status", []byte(`"failed"`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, _ := s2.Get("status"); ok {
		t.Error("task-2 can see task-1's keys")
	}
}
