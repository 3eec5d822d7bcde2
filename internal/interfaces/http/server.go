// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthFunc reports the state of each backing component by name. A non-nil
// error for any component marks the service degraded.
type HealthFunc func(ctx context.Context) map[string]error

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxPhotoBytes caps one uploaded photo
	MaxPhotoBytes int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "0.0.0.0",
		Port:          8080,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  2 * time.Minute,
		MaxPhotoBytes: 20 << 20,
	}
}

// Services groups the application services the server exposes
type Services struct {
	Templates port.TemplateCatalog
	Sessions  service.SessionService
	Exports   service.ExportService
	Documents service.DocumentService
	Health    HealthFunc
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if config.MaxPhotoBytes <= 0 {
		config.MaxPhotoBytes = DefaultServerConfig().MaxPhotoBytes
	}

	router := gin.New()
	router.MaxMultipartMemory = config.MaxPhotoBytes

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.config.MaxPhotoBytes, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		// Templates
		api.GET("/templates", handlers.ListTemplates)
		api.GET("/templates/:id", handlers.GetTemplate)

		// Sessions
		api.POST("/sessions", handlers.CreateSession)
		api.GET("/sessions", handlers.ListSessions)
		api.GET("/sessions/:id", handlers.GetSession)
		api.DELETE("/sessions/:id", handlers.EndSession)
		api.PUT("/sessions/:id/form", handlers.UpdateForm)
		api.POST("/sessions/:id/photos", handlers.AddPhoto)
		api.DELETE("/sessions/:id/photos/:photoID", handlers.RemovePhoto)
		api.POST("/sessions/:id/export", handlers.Export)
		api.GET("/sessions/:id/documents", handlers.ListSessionDocuments)

		// Documents
		api.GET("/documents", handlers.ListDocuments)
		api.GET("/documents/:id", handlers.GetDocument)
		api.GET("/documents/:id/file", handlers.DownloadDocument)
		api.GET("/documents/:id/preview", handlers.DownloadPreview)
		api.GET("/documents/:id/sheet", handlers.DownloadSheet)
		api.POST("/documents/:id/deliver", handlers.RedeliverDocument)
		api.DELETE("/documents/:id", handlers.DeleteDocument)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
