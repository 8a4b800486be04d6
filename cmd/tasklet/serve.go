package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tasklet/internal/actor"
	"tasklet/internal/config"
	"tasklet/internal/server"
	"tasklet/internal/state"
)

var (
	serveHost  string
	servePort  int
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tasklet HTTP server",
	Long: `Start the HTTP server that accepts tasks, processes them in the
background, and serves status polling.

Endpoints:
  POST /api/tasks      create a task and start processing
  GET  /api/tasks/:id  poll a task's status
  GET  /api/tasks      list all tasks, newest first
  GET  /health         liveness check`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
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

	client, err := newAgentClient(cfg)
	if err != nil {
		return err
	}

	directory := actor.NewDirectory(client, db)

	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		EnableCORS:   cfg.Server.EnableCORS,
		Debug:        serveDebug,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, directory, db)

	// Graceful shutdown on SIGINT/SIGTERM. In-flight requests drain; tasks
	// still processing keep their last durable state and can be polled after
	// a restart.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		color.Yellow("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	color.Green("tasklet listening on http://%s (db: %s)", srv.Addr(), dbPath)
	return srv.Start()
}
