package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"autoscraper/internal/app"
	"autoscraper/internal/handlers"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server

	scraperHandler *handlers.ScraperHandler
	buildHandler   *handlers.BuildHandler
	runHandler     *handlers.RunHandler
	statusHandler  *handlers.StatusHandler
}

// New creates a new HTTP server over the application
func New(application *app.App) *Server {
	s := &Server{
		app:            application,
		scraperHandler: handlers.NewScraperHandler(application.Repository, application.Logger),
		buildHandler:   handlers.NewBuildHandler(application.Orchestrator, application.PipelineBuilder, application.Logger),
		runHandler:     handlers.NewRunHandler(application.Runner, application.Logger),
		statusHandler:  handlers.NewStatusHandler(application.Repository, application.Logger),
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.withMiddleware(s.router),
		// Builds hold the connection while the refinement loop runs
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
