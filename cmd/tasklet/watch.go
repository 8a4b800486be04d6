package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"tasklet/internal/tui"
	"tasklet/pkg/models"
)

var watchServerURL string

var watchCmd = &cobra.Command{
	Use:   "watch <task-id>",
	Short: "Watch a task's progress live",
	Long: `Poll a running tasklet server and render the task's subtask progress
in the terminal until the task completes or fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchServerURL, "server", "http://localhost:8787", "Base URL of the tasklet server")
}

func runWatch(cmd *cobra.Command, args []string) error {
	taskID := args[0]
	url := fmt.Sprintf("%s/api/tasks/%s", watchServerURL, taskID)
	client := &http.Client{Timeout: 10 * time.Second}

	fetch := func() (models.Task, error) {
		resp, err := client.Get(url)
		if err != nil {
			return models.Task{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return models.Task{}, fmt.Errorf("task %s not found", taskID)
		}
		if resp.StatusCode != http.StatusOK {
			return models.Task{}, fmt.Errorf("server returned %s", resp.Status)
		}

		var task models.Task
		if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
			return models.Task{}, fmt.Errorf("decode status: %w", err)
		}
		return task, nil
	}

	final, err := tui.RunWatch(taskID, fetch)
	if err != nil {
		return err
	}

	if final.Status == models.TaskStatusFailed {
		return fmt.Errorf("task failed: %s", final.Error)
	}
	return nil
}
