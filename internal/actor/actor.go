// Package actor implements the per-task processing actor: a single-writer
// state machine that decomposes a prompt into subtasks, executes them in
// order, and persists after every transition so partial progress is always
// observable.
package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"tasklet/internal/api"
	"tasklet/internal/decompose"
	"tasklet/pkg/models"
)

// Durable storage keys. One key per field keeps each transition's write
// small and mirrors the snapshot shape returned by Status.
const (
	keyPrompt      = "prompt"
	keyStatus      = "status"
	keyCreatedAt   = "created_at"
	keySubtasks    = "subtasks"
	keyCompletedAt = "completed_at"
	keyError       = "error"
)

// maxErrorLen caps the diagnostic string surfaced to callers.
const maxErrorLen = 200

// Actor owns the state of exactly one task. All mutations go through its
// mutex, so no two transitions for the same task ever interleave. Processing
// runs on a goroutine detached from the triggering call.
type Actor struct {
	taskID string
	store  Storage
	agent  api.Completer

	mu   sync.Mutex
	task models.Task
}

// New creates the actor for taskID, loading any previously persisted state
// from store so a restarted process still reports the last durable snapshot.
func New(taskID string, store Storage, agent api.Completer) (*Actor, error) {
	a := &Actor{
		taskID: taskID,
		store:  store,
		agent:  agent,
		task:   models.Task{ID: taskID, Status: models.TaskStatusPending},
	}
	if err := a.load(); err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	return a, nil
}

// TaskID returns the identifier this actor is addressed by.
func (a *Actor) TaskID() string {
	return a.taskID
}

// Initialize durably records the prompt and resets the task to pending.
// Callers must guarantee at most one Initialize per fresh taskID;
// re-initializing overwrites prompt and createdAt.
func (a *Actor) Initialize(prompt string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.task.Prompt = prompt
	a.task.Status = models.TaskStatusPending
	a.task.CreatedAt = time.Now().UTC()

	if err := a.putJSON(keyPrompt, a.task.Prompt); err != nil {
		return err
	}
	if err := a.putJSON(keyStatus, a.task.Status); err != nil {
		return err
	}
	return a.putJSON(keyCreatedAt, a.task.CreatedAt)
}

// BeginProcessing durably marks the task as processing and kicks off the
// decomposition and subtask execution on a background goroutine. It returns
// once the processing status is persisted, before any agent call is made.
//
// A second invocation is rejected: the upstream trigger is not idempotent
// and re-running would duplicate agent calls.
func (a *Actor) BeginProcessing() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.task.Status != models.TaskStatusPending {
		return fmt.Errorf("task %s: processing already started (status %s)", a.taskID, a.task.Status)
	}

	a.task.Status = models.TaskStatusProcessing
	if err := a.putJSON(keyStatus, a.task.Status); err != nil {
		a.task.Status = models.TaskStatusPending
		return err
	}

	go a.process()
	return nil
}

// Status returns a point-in-time copy of the task. Safe to call at any
// moment, including mid-processing and indefinitely after a terminal state.
func (a *Actor) Status() models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.task.Clone()
}

// process decomposes the prompt, executes each subtask in order, then
// completes the task. Any agent failure fails the whole task.
func (a *Actor) process() {
	ctx := context.Background()

	prompt := a.currentPrompt()

	response, err := a.agent.Complete(ctx, decompose.DecompositionPrompt(prompt))
	if err != nil {
		a.fail(fmt.Sprintf("decomposition failed: %v", err))
		return
	}

	descriptions, err := decompose.ParseSubtasks(response)
	if err != nil {
		// Malformed output is a formatting problem, not an infrastructure
		// failure: continue with a single sentinel subtask.
		log.Printf("task %s: decomposition parse fallback: %v", a.taskID, err)
		descriptions = []string{decompose.FallbackDescription}
	}

	if err := a.setSubtasks(descriptions); err != nil {
		a.fail(fmt.Sprintf("persist subtasks: %v", err))
		return
	}

	for i := range descriptions {
		if err := a.markSubtaskProcessing(i); err != nil {
			a.fail(fmt.Sprintf("persist subtask %d: %v", i+1, err))
			return
		}

		result, err := a.agent.Complete(ctx, decompose.CompletionPrompt(descriptions[i]))
		if err != nil {
			// Fail fast: a broken agent call likely recurs on the remaining
			// subtasks, so they are abandoned rather than attempted.
			a.fail(fmt.Sprintf("subtask %d failed: %v", i+1, err))
			return
		}

		if err := a.markSubtaskCompleted(i, result); err != nil {
			a.fail(fmt.Sprintf("persist subtask %d: %v", i+1, err))
			return
		}
	}

	a.complete()
}

// currentPrompt reads the prompt under the lock.
func (a *Actor) currentPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.task.Prompt
}

// setSubtasks installs the decomposed sequence, all pending.
func (a *Actor) setSubtasks(descriptions []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	subtasks := make([]models.Subtask, len(descriptions))
	for i, d := range descriptions {
		subtasks[i] = models.Subtask{
			ID:          i + 1,
			Description: d,
			Status:      models.SubtaskPending,
		}
	}
	a.task.Subtasks = subtasks
	return a.putJSON(keySubtasks, a.task.Subtasks)
}

// markSubtaskProcessing persists the transition of one subtask into
// processing. At most one subtask is ever in this state.
func (a *Actor) markSubtaskProcessing(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.task.Subtasks[i].Status = models.SubtaskProcessing
	return a.putJSON(keySubtasks, a.task.Subtasks)
}

// markSubtaskCompleted stores the result and completion time of one subtask.
func (a *Actor) markSubtaskCompleted(i int, result string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now().UTC()
	a.task.Subtasks[i].Status = models.SubtaskCompleted
	a.task.Subtasks[i].Result = result
	a.task.Subtasks[i].CompletedAt = &now
	return a.putJSON(keySubtasks, a.task.Subtasks)
}

// complete moves the task to its terminal success state.
func (a *Actor) complete() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.task.Status.Terminal() {
		return
	}

	now := time.Now().UTC()
	a.task.Status = models.TaskStatusCompleted
	a.task.CompletedAt = &now

	if err := a.putJSON(keyStatus, a.task.Status); err != nil {
		log.Printf("task %s: persist completed status: %v", a.taskID, err)
	}
	if err := a.putJSON(keyCompletedAt, a.task.CompletedAt); err != nil {
		log.Printf("task %s: persist completed_at: %v", a.taskID, err)
	}
}

// fail moves the task to its terminal failure state with a short diagnostic.
// Terminal states are final: fail on an already-terminal task is a no-op.
func (a *Actor) fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.task.Status.Terminal() {
		return
	}

	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	a.task.Status = models.TaskStatusFailed
	a.task.Error = msg

	if err := a.putJSON(keyStatus, a.task.Status); err != nil {
		log.Printf("task %s: persist failed status: %v", a.taskID, err)
	}
	if err := a.putJSON(keyError, a.task.Error); err != nil {
		log.Printf("task %s: persist error: %v", a.taskID, err)
	}
	log.Printf("task %s: failed: %s", a.taskID, msg)
}

// putJSON durably records a JSON-encoded value. Callers hold the mutex.
func (a *Actor) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := a.store.Put(key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// load rebuilds the in-memory mirror from durable storage. Missing keys are
// fine: a fresh actor starts pending with no subtasks.
func (a *Actor) load() error {
	if err := a.getJSON(keyPrompt, &a.task.Prompt); err != nil {
		return err
	}
	if err := a.getJSON(keyStatus, &a.task.Status); err != nil {
		return err
	}
	if a.task.Status == "" {
		a.task.Status = models.TaskStatusPending
	}
	if err := a.getJSON(keyCreatedAt, &a.task.CreatedAt); err != nil {
		return err
	}
	if err := a.getJSON(keySubtasks, &a.task.Subtasks); err != nil {
		return err
	}
	if err := a.getJSON(keyCompletedAt, &a.task.CompletedAt); err != nil {
		return err
	}
	return a.getJSON(keyError, &a.task.Error)
}

// getJSON reads and decodes a value if present.
func (a *Actor) getJSON(key string, v any) error {
	data, ok, err := a.store.Get(key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
