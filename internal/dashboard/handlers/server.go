// Package handlers exposes the dashboard API over HTTP/JSON, bridging the
// transport layer and the store layer and translating between request
// payloads and domain models.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rdmelo/perdesk/internal/dashboard/auth"
	"go.uber.org/zap"
)

// Server wraps the gin engine and the underlying HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
	endpoint   string
}

// NewServer constructs a Server listening on the given port.
func NewServer(port int, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(cors.Default())

	return &Server{
		engine:   engine,
		logger:   logger,
		endpoint: fmt.Sprintf(":%d", port),
	}
}

// RegisterRoutes wires the API routes. Reads are public; mutations require
// a valid access token.
func (s *Server) RegisterRoutes(
	clients *ClientHandler,
	perdcomps *PerdCompHandler,
	activity *ActivityHandler,
	jwtSecret string,
) {
	protected := auth.Middleware(jwtSecret)

	api := s.engine.Group("/api")

	api.GET("/clients", clients.List)
	api.GET("/clients/:id", clients.Get)
	api.GET("/clients/:id/perdcomps", perdcomps.ListByClient)
	api.POST("/clients", protected, clients.Create)
	api.PUT("/clients/:id", protected, clients.Update)
	api.DELETE("/clients/:id", protected, clients.Delete)

	api.GET("/perdcomps", perdcomps.List)
	api.GET("/perdcomps/:id", perdcomps.Get)
	api.POST("/perdcomps", protected, perdcomps.Create)
	api.PUT("/perdcomps/:id", protected, perdcomps.Update)
	api.DELETE("/perdcomps/:id", protected, perdcomps.Delete)

	api.GET("/activity", activity.List)

	api.POST("/auth/refresh", refreshHandler(jwtSecret))

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler returns the underlying HTTP handler, used by tests to serve the
// API from an httptest server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the HTTP server until it is stopped or fails.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.endpoint,
		Handler: s.engine,
	}
	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.endpoint))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Server stopped")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	named := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		named.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
