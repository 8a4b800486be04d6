package state

import (
	"database/sql"
	"fmt"
	"time"

	"tasklet/pkg/models"
)

// TaskRecord is the bookkeeping row for one task: enough for ownership and
// listing. The authoritative task state lives with the task's actor.
type TaskRecord struct {
	ID        string            `json:"taskId"`
	Prompt    string            `json:"prompt"`
	Status    models.TaskStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// TaskRepository handles task bookkeeping, consumed by the routing layer.
type TaskRepository interface {
	CreateTask(r *TaskRecord) error
	GetTask(id string) (*TaskRecord, error)
	ListTasks() ([]TaskRecord, error)
}

// CreateTask inserts a new task record.
func (db *DB) CreateTask(r *TaskRecord) error {
	_, err := db.Exec(`
		INSERT INTO tasks (id, prompt, status, created_at)
		VALUES (?, ?, ?, ?)
	`, r.ID, r.Prompt, string(r.Status), formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task record by ID. Returns nil if not found.
func (db *DB) GetTask(id string) (*TaskRecord, error) {
	row := db.QueryRow(`
		SELECT id, prompt, status, created_at
		FROM tasks WHERE id = ?
	`, id)

	var r TaskRecord
	var createdAt string
	err := row.Scan(&r.ID, &r.Prompt, &r.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	r.CreatedAt, _ = parseTime(createdAt)
	return &r, nil
}

// ListTasks lists all task records, newest first.
func (db *DB) ListTasks() ([]TaskRecord, error) {
	rows, err := db.Query(`
		SELECT id, prompt, status, created_at
		FROM tasks ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var r TaskRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Prompt, &r.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		r.CreatedAt, _ = parseTime(createdAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return records, nil
}

// Compile-time verification that DB implements the repository.
var _ TaskRepository = (*DB)(nil)
