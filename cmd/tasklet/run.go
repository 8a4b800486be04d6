package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tasklet/internal/actor"
	"tasklet/internal/config"
	"tasklet/pkg/models"
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Process a single task locally and print the results",
	Long: `Decompose and execute a task without starting the server. State is
kept in memory; use 'tasklet serve' for durable processing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := newAgentClient(cfg)
	if err != nil {
		return err
	}

	directory := actor.NewDirectory(client, actor.NewMemoryProvider())
	taskID := uuid.New().String()

	a, err := directory.Resolve(taskID)
	if err != nil {
		return fmt.Errorf("resolve actor: %w", err)
	}
	if err := a.Initialize(prompt); err != nil {
		return fmt.Errorf("initialize task: %w", err)
	}
	if err := a.BeginProcessing(); err != nil {
		return fmt.Errorf("begin processing: %w", err)
	}

	color.Cyan("task %s: %s", taskID, prompt)

	// Poll until terminal, announcing each subtask as it starts.
	announced := 0
	var snapshot models.Task
	for {
		snapshot = a.Status()
		for i := announced; i < len(snapshot.Subtasks); i++ {
			if snapshot.Subtasks[i].Status != models.SubtaskPending {
				color.Yellow("  [%d/%d] %s", snapshot.Subtasks[i].ID, len(snapshot.Subtasks), snapshot.Subtasks[i].Description)
				announced = i + 1
			}
		}
		if snapshot.Status.Terminal() {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}

	printTask(snapshot)
	if snapshot.Status == models.TaskStatusFailed {
		return fmt.Errorf("task failed: %s", snapshot.Error)
	}
	return nil
}

// printTask prints a task snapshot with per-subtask results.
func printTask(task models.Task) {
	fmt.Println()
	switch task.Status {
	case models.TaskStatusCompleted:
		color.Green("completed (%d subtasks)", len(task.Subtasks))
	case models.TaskStatusFailed:
		color.Red("failed: %s", task.Error)
	case models.TaskStatusProcessing:
		color.Yellow("processing")
	default:
		fmt.Println(string(task.Status))
	}

	for _, st := range task.Subtasks {
		fmt.Println()
		switch st.Status {
		case models.SubtaskCompleted:
			color.Green("✓ %d. %s", st.ID, st.Description)
			if st.Result != "" {
				fmt.Println(indent(st.Result, "  "))
			}
		case models.SubtaskProcessing:
			color.Yellow("… %d. %s", st.ID, st.Description)
		default:
			color.White("· %d. %s", st.ID, st.Description)
		}
	}
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
