package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
)

// StatusHandler serves health and status endpoints
type StatusHandler struct {
	repository interfaces.ScraperRepository
	startedAt  time.Time
	logger     arbor.ILogger
}

// NewStatusHandler creates a status handler
func NewStatusHandler(repository interfaces.ScraperRepository, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		repository: repository,
		startedAt:  time.Now(),
		logger:     logger,
	}
}

// HealthHandler handles GET /health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusHandler handles GET /api/status
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	scraperCount := -1
	if records, err := h.repository.List(r.Context()); err == nil {
		scraperCount = len(records)
	} else {
		h.logger.Warn().Err(err).Msg("Failed to count scrapers for status")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  common.GetVersion(),
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"scrapers": scraperCount,
	})
}
