package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/triage-intake-server/internal/domain"
	"github.com/triage-intake-server/internal/health"
	"github.com/triage-intake-server/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	submitter     domain.TriageSubmitter
	health        *health.HealthChecker
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, submitter domain.TriageSubmitter, checker *health.HealthChecker, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if configManager.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &Server{
		configManager: configManager,
		submitter:     submitter,
		health:        checker,
		logger:        logger,
		router:        router,
	}

	// Add middleware
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger(logger))
	router.Use(gin.CustomRecovery(server.recoverPanic))
	router.Use(middleware.SecurityHeaders(configManager.IsProduction()))
	router.Use(corsMiddleware())
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// Setup routes
	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/triage", s.handleTriage)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":    health.HealthStateHealthy,
			"timestamp": time.Now().UTC(),
		})
		return
	}

	status := s.health.GetStatus(c.Request.Context())

	httpStatus := http.StatusOK
	if status.Overall == health.HealthStateUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, status)
}

// recoverPanic turns a handler panic into the generic failure response
func (s *Server) recoverPanic(c *gin.Context, recovered interface{}) {
	s.logger.WithFields(logrus.Fields{
		"correlation_id": middleware.GetCorrelationID(c),
		"panic":          fmt.Sprintf("%v", recovered),
	}).Error("Recovered from handler panic")

	c.AbortWithStatusJSON(http.StatusInternalServerError, domain.ErrorResponse{Error: domain.GenericFailureMessage})
}

// corsMiddleware adds CORS headers to responses. The intake form is served
// from a different origin than the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept, "+middleware.CorrelationIDHeader)
		c.Header("Access-Control-Expose-Headers", "Content-Length, "+middleware.CorrelationIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
