// Package api exposes the interaction engine over HTTP. Field names in the
// request and response bodies are part of the external UI contract.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/internal/middleware"
	"github.com/rx-interaction-engine/internal/service"
)

// Server is the HTTP server hosting the engine's API surface.
type Server struct {
	configManager domain.ConfigManager
	engine        *service.Engine
	router        *gin.Engine
	server        *http.Server
	logger        *logrus.Logger
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(configManager domain.ConfigManager, engine *service.Engine, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()
	if logger == nil {
		logger = logrus.New()
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	if cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	}

	s := &Server{
		configManager: configManager,
		engine:        engine,
		router:        router,
		logger:        logger,
	}
	s.setupRoutes()
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
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
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	interactions := s.router.Group("/interactions")
	{
		interactions.POST("/check", s.handleCheckInteractions)
	}

	alternatives := s.router.Group("/alternatives")
	{
		alternatives.POST("/find-alternatives", s.handleFindAlternatives)
		alternatives.GET("/interactions/:drugName", s.handleKnownInteractions)
		alternatives.POST("/clear-cache", s.handleClearCache)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	snapshot := s.engine.Health()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
		"sources":   snapshot.Sources,
		"stats":     snapshot.Stats,
	})
}
