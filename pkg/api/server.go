// Package api provides the HTTP API: submission intake, learner progress
// and history reads, and the operator operations (reset, retroactive
// recalculation). The interactive UI is a separate system; this surface is
// operational only.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/nsundt-ai/evaluator-v16/pkg/activity"
	"github.com/nsundt-ai/evaluator-v16/pkg/config"
	"github.com/nsundt-ai/evaluator-v16/pkg/database"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm"
	"github.com/nsundt-ai/evaluator-v16/pkg/pipeline"
	"github.com/nsundt-ai/evaluator-v16/pkg/scoring"
	"github.com/nsundt-ai/evaluator-v16/pkg/services"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg        *config.Store
	dbClient   *database.Client
	orch       *pipeline.Orchestrator
	scorer     *scoring.Engine
	gateway    *llm.Gateway
	activities *activity.Manager
	learners   *services.LearnerService
	history    *services.HistoryService
}

// NewServer creates a new API server with Echo v5.
func NewServer(
	cfg *config.Store,
	dbClient *database.Client,
	orch *pipeline.Orchestrator,
	scorer *scoring.Engine,
	gateway *llm.Gateway,
	activities *activity.Manager,
	learners *services.LearnerService,
	history *services.HistoryService,
) *Server {
	s := &Server{
		echo:       echo.New(),
		cfg:        cfg,
		dbClient:   dbClient,
		orch:       orch,
		scorer:     scorer,
		gateway:    gateway,
		activities: activities,
		learners:   learners,
		history:    history,
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	// Submission envelopes carry full transcripts; cap the body well above
	// any legitimate payload.
	s.echo.Use(middleware.BodyLimit(4 * 1024 * 1024))

	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/evaluations", s.submitEvaluationHandler)

	v1.GET("/activities", s.listActivitiesHandler)

	v1.GET("/learners/:id/progress", s.learnerProgressHandler)
	v1.GET("/learners/:id/history", s.learnerHistoryHandler)
	v1.POST("/learners/:id/reset", s.resetLearnerHandler)

	v1.POST("/scoring/recalculate", s.recalculateHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(reqCtx, s.dbClient)
	stats, _ := s.activities.Stats()

	resp := &HealthResponse{
		Status:     "healthy",
		Version:    versionString(),
		Database:   dbHealth,
		Providers:  s.gateway.AvailableProviders(),
		Activities: stats.Total,
	}
	if err != nil {
		resp.Status = "unhealthy"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
