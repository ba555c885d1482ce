// Package devserver is a local, in-memory implementation of the ProjectHub
// REST API. It backs `projecthub serve` and the integration tests.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gerunddev/projecthub/internal/log"
)

// Config configures a Server.
type Config struct {
	JWTSecret string
	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server serves the API from a Store.
type Server struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	engine *gin.Engine
}

// New creates a server with an empty store.
func New(cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("devserver: JWT secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Server{
		store:  NewStore(cfg.Now),
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    cfg.Now,
	}
	s.engine = s.buildRouter()
	return s, nil
}

// Store returns the server's backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := r.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.GET("/me", s.requireAuth(), s.me)

	projects := r.Group("/projects", s.requireAuth())
	projects.GET("", s.listProjects)
	projects.POST("", s.createProject)
	projects.GET("/:id", s.getProject)
	projects.PUT("/:id", s.updateProject)
	projects.DELETE("/:id", s.deleteProject)
	projects.GET("/:id/tasks", s.listTasks)
	projects.POST("/:id/tasks", s.createTask)
	projects.PUT("/:id/tasks/:taskId", s.updateTask)
	projects.DELETE("/:id/tasks/:taskId", s.deleteTask)

	return r
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("devserver request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("dev server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("dev server stopped")
	return nil
}
