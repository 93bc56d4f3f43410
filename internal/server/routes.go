package server

import "net/http"

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health and status
	mux.HandleFunc("/health", s.statusHandler.HealthHandler)
	mux.HandleFunc("/api/status", s.statusHandler.StatusHandler)

	// Repository reads
	mux.HandleFunc("/api/scrapers", s.scraperHandler.ListHandler)       // GET - list all
	mux.HandleFunc("/api/scrapers/", s.scraperHandler.GetHandler)       // GET /{domain}
	mux.HandleFunc("/api/pipelines/", s.scraperHandler.PipelineHandler) // GET /{domain}

	// Builds
	mux.HandleFunc("/api/build", s.buildHandler.BuildScraperHandler)      // POST - single scraper
	mux.HandleFunc("/api/pipelines", s.buildHandler.BuildPipelineHandler) // POST - two-stage pipeline

	// Stored scraper execution
	mux.HandleFunc("/api/run", s.runHandler.RunScraperHandler)           // POST - one URL
	mux.HandleFunc("/api/run/pipeline", s.runHandler.RunPipelineHandler) // POST - full pipeline

	return mux
}
