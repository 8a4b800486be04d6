package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasklet/internal/state"
	"tasklet/pkg/models"
)

// createTaskRequest is the body of POST /api/tasks.
type createTaskRequest struct {
	Prompt string `json:"prompt"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleCreateTask records a fresh task, initializes its actor, and fires
// processing. The response returns as soon as the processing status is
// durable; decomposition and subtask execution continue in the background.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required and must be a string"})
		return
	}

	taskID := uuid.New().String()

	record := &state.TaskRecord{
		ID:        taskID,
		Prompt:    req.Prompt,
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateTask(record); err != nil {
		log.Printf("create task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	a, err := s.directory.Resolve(taskID)
	if err != nil {
		log.Printf("resolve task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	if err := a.Initialize(req.Prompt); err != nil {
		log.Printf("initialize task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}
	if err := a.BeginProcessing(); err != nil {
		log.Printf("begin processing task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"taskId":  taskID,
		"message": "Task created and processing started",
	})
}

// handleGetTask is the status facade: it forwards to the task's actor and
// returns whatever has been durably committed so far. Terminal snapshots are
// re-readable indefinitely.
func (s *Server) handleGetTask(c *gin.Context) {
	taskID := c.Param("id")

	record, err := s.repo.GetTask(taskID)
	if err != nil {
		log.Printf("get task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task status"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	a, err := s.directory.Resolve(taskID)
	if err != nil {
		log.Printf("resolve task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task status"})
		return
	}

	c.JSON(http.StatusOK, a.Status())
}

// handleListTasks returns every known task, newest first, with each task's
// current actor snapshot. A task whose actor cannot be resolved falls back
// to its bookkeeping record.
func (s *Server) handleListTasks(c *gin.Context) {
	records, err := s.repo.ListTasks()
	if err != nil {
		log.Printf("list tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}

	tasks := make([]models.Task, 0, len(records))
	for _, record := range records {
		a, err := s.directory.Resolve(record.ID)
		if err != nil {
			log.Printf("resolve task %s: %v", record.ID, err)
			tasks = append(tasks, models.Task{
				ID:        record.ID,
				Prompt:    record.Prompt,
				Status:    record.Status,
				CreatedAt: record.CreatedAt,
			})
			continue
		}
		tasks = append(tasks, a.Status())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"total":   len(tasks),
	})
}
