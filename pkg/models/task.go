package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been recorded but not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusProcessing indicates the task is being worked on.
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusCompleted indicates every subtask finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates processing stopped on an error.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions can leave this status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// SubtaskStatus represents the current state of a single subtask.
type SubtaskStatus string

const (
	// SubtaskPending indicates the subtask has not started.
	SubtaskPending SubtaskStatus = "pending"
	// SubtaskProcessing indicates the subtask's completion call is in flight.
	SubtaskProcessing SubtaskStatus = "processing"
	// SubtaskCompleted indicates the subtask finished and has a result.
	SubtaskCompleted SubtaskStatus = "completed"
)

// Subtask is one unit of decomposed work. ID is the 1-based position in the
// sequence; it is stable for the task's lifetime and only used for ordering.
type Subtask struct {
	ID          int           `json:"id"`
	Description string        `json:"description"`
	Status      SubtaskStatus `json:"status"`
	Result      string        `json:"result,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// Task represents a unit of work submitted for decomposition and execution.
type Task struct {
	// ID is the opaque identifier used to address the task's actor.
	ID string `json:"taskId"`
	// Prompt is the original natural-language request, immutable once set.
	Prompt string `json:"prompt"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Subtasks is the ordered decomposition; empty until decomposition succeeds.
	Subtasks []Subtask `json:"subtasks,omitempty"`
	// Error is the failure reason; set only when Status is failed.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the task was initialized.
	CreatedAt time.Time `json:"createdAt"`
	// CompletedAt is when the task reached terminal success, if it did.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Clone returns a deep copy of the task, safe to hand to a caller while the
// owning actor keeps mutating its own state.
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(out.Subtasks, t.Subtasks)
		for i := range t.Subtasks {
			if t.Subtasks[i].CompletedAt != nil {
				ts := *t.Subtasks[i].CompletedAt
				out.Subtasks[i].CompletedAt = &ts
			}
		}
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	return out
}
