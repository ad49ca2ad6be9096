// Package fixture is a disposable CRUD reference app (auth, projects,
// tasks) the browser agent can be exercised against in isolation.
package fixture

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/fixture/store"
)

const serviceVersion = "1.0.0"

type Server struct {
	log    *zap.Logger
	store  *store.Store
	tokens *TokenIssuer
	engine *gin.Engine
}

func NewServer(log *zap.Logger, st *store.Store, jwtSecret, staticDir string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(ginzap.Ginzap(log, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(log, true))

	s := &Server{
		log:    log,
		store:  st,
		tokens: NewTokenIssuer(jwtSecret),
		engine: engine,
	}
	s.routes(staticDir)
	return s
}

func (s *Server) routes(staticDir string) {
	api := s.engine.Group("/api")
	api.GET("/health", s.health)
	api.POST("/admin/reset", s.adminReset)

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.GET("/me", s.requireAuth(), s.me)

	// The smoke harness verifies tokens against this path.
	api.GET("/users/me", s.requireAuth(), s.me)

	projects := api.Group("/projects", s.requireAuth())
	projects.GET("", s.listProjects)
	projects.POST("", s.createProject)
	projects.GET("/:id", s.getProject)
	projects.DELETE("/:id", s.deleteProject)

	tasks := api.Group("/tasks", s.requireAuth())
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTask)
	tasks.GET("/:id", s.getTask)
	tasks.DELETE("/:id", s.deleteTask)

	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		fs := http.FileServer(http.Dir(staticDir))
		s.engine.NoRoute(func(c *gin.Context) {
			fs.ServeHTTP(c.Writer, c.Request)
		})
		s.log.Info("static frontend mounted", zap.String("dir", staticDir))
	}
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Seed ensures the canonical fixture user exists.
func (s *Server) Seed(ctx context.Context) error {
	_, err := s.store.Users().GetByEmail(ctx, SeedEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := hashPassword(SeedPassword)
	if err != nil {
		return err
	}
	_, err = s.store.Users().Create(ctx, SeedEmail, hash, seedDisplayName)
	if err == nil {
		s.log.Info("seed user created", zap.String("email", SeedEmail))
	}
	return err
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("fixture listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "browser-agent-test-fixture",
	})
}

func (s *Server) adminReset(c *gin.Context) {
	if err := s.store.Reset(c.Request.Context()); err != nil {
		s.log.Error("reset failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "reset failed"})
		return
	}
	if err := s.Seed(c.Request.Context()); err != nil {
		s.log.Error("reseed failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "reseed failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "seed_user": SeedEmail})
}
