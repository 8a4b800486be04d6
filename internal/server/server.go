// Package server exposes the task actors over HTTP: task creation, the
// status facade polled by clients, and task listing. It is thin plumbing
// around the actor directory; all task semantics live in internal/actor.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tasklet/internal/actor"
	"tasklet/internal/state"
)

// Config holds HTTP server settings.
type Config struct {
	Host         string
	Port         int
	EnableCORS   bool
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8787,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server routes HTTP requests to task actors.
type Server struct {
	directory *actor.Directory
	repo      state.TaskRepository

	engine     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
}

// New creates a server backed by the given actor directory and task
// repository.
func New(cfg Config, directory *actor.Directory, repo state.TaskRepository) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		directory: directory,
		repo:      repo,
		engine:    engine,
		startTime: time.Now(),
	}

	engine.GET("/health", s.handleHealth)
	engine.POST("/api/tasks", s.handleCreateTask)
	engine.GET("/api/tasks", s.handleListTasks)
	engine.GET("/api/tasks/:id", s.handleGetTask)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server. In-flight requests get until ctx
// expires; background task processing is not interrupted.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
