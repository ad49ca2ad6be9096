package fixture

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/fixture/store"
)

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

const defaultProjectColor = "#3b82f6"

func (s *Server) listProjects(c *gin.Context) {
	user := currentUser(c)
	projects, err := s.store.Projects().List(c.Request.Context(), user.ID)
	if err != nil {
		s.log.Error("project list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.Color == "" {
		req.Color = defaultProjectColor
	}

	user := currentUser(c)
	project, err := s.store.Projects().Create(c.Request.Context(), store.Project{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		UserID:      user.ID,
	})
	if err != nil {
		s.log.Error("project create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) getProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	project, err := s.store.Projects().Get(c.Request.Context(), id, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
		return
	}
	if err != nil {
		s.log.Error("project get failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) deleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	err := s.store.Projects().Delete(c.Request.Context(), id, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
		return
	}
	if err != nil {
		s.log.Error("project delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id route parameter, answering 422 on garbage input.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return id, true
}
