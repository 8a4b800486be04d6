package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tasklet/internal/actor"
	"tasklet/internal/state"
	"tasklet/pkg/models"
)

// fakeAgent answers the decomposition call with a fixed list and every
// subtask call with a canned result.
type fakeAgent struct {
	mu            sync.Mutex
	decomposition string
	calls         int
}

func (f *fakeAgent) Complete(_ context.Context, instruction string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 1 {
		return f.decomposition, nil
	}
	return fmt.Sprintf("done: call %d", f.calls-1), nil
}

func newTestServer(t *testing.T, agent *fakeAgent) *Server {
	t.Helper()

	db, err := state.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	directory := actor.NewDirectory(agent, db)
	return New(DefaultConfig(), directory, db)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	decoded := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s response: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, decoded
}

// pollTask polls the status facade until the task is terminal.
func pollTask(t *testing.T, handler http.Handler, taskID string) models.Task {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+taskID, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET task returned %d: %s", w.Code, w.Body.String())
		}

		var task models.Task
		if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
			t.Fatalf("decode task: %v", err)
		}
		if task.Status.Terminal() {
			return task
		}

		select {
		case <-deadline:
			t.Fatalf("task %s never terminated, stuck at %s", taskID, task.Status)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeAgent{decomposition: `["a"]`})

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestCreateTask_ValidatesPrompt(t *testing.T) {
	s := newTestServer(t, &fakeAgent{decomposition: `["a"]`})

	cases := []string{"", `{}`, `{"prompt":""}`, `{"prompt":"   "}`, `{"prompt":42}`}
	for _, body := range cases {
		w, _ := doJSON(t, s.Handler(), http.MethodPost, "/api/tasks", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestCreateTask_HappyPath(t *testing.T) {
	agent := &fakeAgent{decomposition: `["Book venue","Order cake","Send invites"]`}
	s := newTestServer(t, agent)

	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/tasks", `{"prompt":"Plan a birthday party"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create returned %d: %v", w.Code, body)
	}
	if body["success"] != true {
		t.Error("create response missing success")
	}
	taskID, _ := body["taskId"].(string)
	if taskID == "" {
		t.Fatal("create response missing taskId")
	}

	final := pollTask(t, s.Handler(), taskID)
	if final.Status != models.TaskStatusCompleted {
		t.Fatalf("status = %s, want completed (error %q)", final.Status, final.Error)
	}
	if final.ID != taskID {
		t.Errorf("snapshot taskId = %q, want %q", final.ID, taskID)
	}
	if final.Prompt != "Plan a birthday party" {
		t.Errorf("prompt = %q", final.Prompt)
	}
	if len(final.Subtasks) != 3 {
		t.Fatalf("got %d subtasks, want 3", len(final.Subtasks))
	}
	for _, st := range final.Subtasks {
		if st.Status != models.SubtaskCompleted {
			t.Errorf("subtask %d = %s, want completed", st.ID, st.Status)
		}
	}
	if final.CompletedAt == nil {
		t.Error("completedAt not set")
	}
	if final.Error != "" {
		t.Errorf("error = %q, want empty", final.Error)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeAgent{decomposition: `["a"]`})

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/api/tasks/no-such-task", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body["error"] != "Task not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestListTasks(t *testing.T) {
	agent := &fakeAgent{decomposition: `["only step"]`}
	s := newTestServer(t, agent)

	var ids []string
	for i := 0; i < 2; i++ {
		_, body := doJSON(t, s.Handler(), http.MethodPost, "/api/tasks", `{"prompt":"job"}`)
		id, _ := body["taskId"].(string)
		if id == "" {
			t.Fatal("missing taskId")
		}
		ids = append(ids, id)
		pollTask(t, s.Handler(), id)
	}

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d", w.Code)
	}
	if body["success"] != true {
		t.Error("list response missing success")
	}
	total, _ := body["total"].(float64)
	if int(total) != 2 {
		t.Errorf("total = %v, want 2", body["total"])
	}
	tasks, _ := body["tasks"].([]any)
	if len(tasks) != 2 {
		t.Fatalf("listed %d tasks, want 2", len(tasks))
	}
	for _, raw := range tasks {
		task, _ := raw.(map[string]any)
		if task["status"] != string(models.TaskStatusCompleted) {
			t.Errorf("listed task status = %v", task["status"])
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &fakeAgent{decomposition: `["a"]`})

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body["error"] != "Route not found" {
		t.Errorf("error = %v", body["error"])
	}
}
