package state

import (
	"database/sql"
	"fmt"

	"tasklet/internal/actor"
)

// taskStorage is the durable key-value storage for one task, backed by the
// task_state table. Rows are namespaced by task_id, so actors never see each
// other's keys.
type taskStorage struct {
	db     *DB
	taskID string
}

// Put durably records value under key for this task.
func (s *taskStorage) Put(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO task_state (task_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(task_id, key) DO UPDATE SET value = excluded.value
	`, s.taskID, key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get returns the value for key and whether it exists.
func (s *taskStorage) Get(key string) ([]byte, bool, error) {
	row := s.db.QueryRow(`
		SELECT value FROM task_state WHERE task_id = ? AND key = ?
	`, s.taskID, key)

	var value []byte
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// OpenStore returns the durable storage scoped to taskID.
func (db *DB) OpenStore(taskID string) (actor.Storage, error) {
	return &taskStorage{db: db, taskID: taskID}, nil
}

var (
	_ actor.Storage       = (*taskStorage)(nil)
	_ actor.StoreProvider = (*DB)(nil)
)
