package fixture

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/fixture/store"
)

type createTaskRequest struct {
	Title     string `json:"title" binding:"required"`
	Status    string `json:"status"`
	ProjectID *int64 `json:"project_id"`
}

const defaultTaskStatus = "todo"

func (s *Server) listTasks(c *gin.Context) {
	user := currentUser(c)
	tasks, err := s.store.Tasks().List(c.Request.Context(), user.ID)
	if err != nil {
		s.log.Error("task list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.Status == "" {
		req.Status = defaultTaskStatus
	}

	user := currentUser(c)
	if req.ProjectID != nil {
		if _, err := s.store.Projects().Get(c.Request.Context(), *req.ProjectID, user.ID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
			return
		}
	}

	task, err := s.store.Tasks().Create(c.Request.Context(), store.Task{
		Title:     req.Title,
		Status:    req.Status,
		ProjectID: req.ProjectID,
		UserID:    user.ID,
	})
	if err != nil {
		s.log.Error("task create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	task, err := s.store.Tasks().Get(c.Request.Context(), id, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	if err != nil {
		s.log.Error("task get failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	err := s.store.Tasks().Delete(c.Request.Context(), id, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	if err != nil {
		s.log.Error("task delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}
