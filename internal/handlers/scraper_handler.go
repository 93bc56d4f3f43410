package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
)

// ScraperHandler serves the stored scraper repository
type ScraperHandler struct {
	repository interfaces.ScraperRepository
	logger     arbor.ILogger
}

// NewScraperHandler creates a scraper repository handler
func NewScraperHandler(repository interfaces.ScraperRepository, logger arbor.ILogger) *ScraperHandler {
	return &ScraperHandler{
		repository: repository,
		logger:     logger,
	}
}

// ListHandler handles GET /api/scrapers
func (h *ScraperHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	records, err := h.repository.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list scrapers")
		WriteError(w, http.StatusInternalServerError, "failed to list scrapers")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(records),
		"scrapers": records,
	})
}

// GetHandler handles GET /api/scrapers/{domain}
func (h *ScraperHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	domain := strings.TrimPrefix(r.URL.Path, "/api/scrapers/")
	if domain == "" || strings.Contains(domain, "/") {
		WriteError(w, http.StatusBadRequest, "domain required")
		return
	}

	record, err := h.repository.Get(r.Context(), domain)
	if errors.Is(err, interfaces.ErrScraperNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("Failed to load scraper")
		WriteError(w, http.StatusInternalServerError, "failed to load scraper")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"scraper": record,
		"source":  record.Source,
	})
}

// PipelineHandler handles GET /api/pipelines/{domain}
func (h *ScraperHandler) PipelineHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	domain := strings.TrimPrefix(r.URL.Path, "/api/pipelines/")
	if domain == "" || strings.Contains(domain, "/") {
		WriteError(w, http.StatusBadRequest, "domain required")
		return
	}

	list, content, err := h.repository.GetPipeline(r.Context(), domain)
	if errors.Is(err, interfaces.ErrIncompletePipeline) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("Failed to load pipeline")
		WriteError(w, http.StatusInternalServerError, "failed to load pipeline")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"domain":  domain,
		"list":    list,
		"content": content,
	})
}
