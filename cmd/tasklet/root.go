package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tasklet",
	Short: "Prompt decomposition & sequential execution service",
	Long: `Tasklet accepts a natural-language task, decomposes it into an ordered
list of subtasks via Claude, and executes each subtask in sequence while
exposing progress to polling clients.

Core capabilities:
- Decomposes a prompt into 3-5 actionable subtasks
- Executes subtasks strictly in order, one at a time
- Persists progress after every step so partial state is always observable
- Serves task creation, status polling and listing over HTTP`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
