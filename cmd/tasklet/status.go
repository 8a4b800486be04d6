package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasklet/internal/actor"
	"tasklet/internal/config"
	"tasklet/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show a task's current state from the local database",
	Long: `Display the durable state of a task: its status, subtasks, results
and any error. Reads the database directly, so it works whether or not the
server is running.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		dbPath = state.DefaultDBPath()
	}
	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	record, err := db.GetTask(taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if record == nil {
		return fmt.Errorf("task %s not found", taskID)
	}

	store, err := db.OpenStore(taskID)
	if err != nil {
		return fmt.Errorf("open task storage: %w", err)
	}

	// A read-only actor over the durable state; no agent is needed since
	// processing is never started here.
	a, err := actor.New(taskID, store, nil)
	if err != nil {
		return fmt.Errorf("load task state: %w", err)
	}

	snapshot := a.Status()
	fmt.Printf("task %s\n", taskID)
	fmt.Printf("prompt: %s\n", snapshot.Prompt)
	printTask(snapshot)
	return nil
}
