package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/interfaces"
	"autoscraper/internal/services/runner"
)

// RunHandler executes stored scrapers over HTTP
type RunHandler struct {
	runner   *runner.Runner
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewRunHandler creates a run handler
func NewRunHandler(r *runner.Runner, logger arbor.ILogger) *RunHandler {
	return &RunHandler{
		runner:   r,
		validate: validator.New(),
		logger:   logger,
	}
}

type runRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// RunScraperHandler handles POST /api/run: resolve the stored scraper for
// the URL and execute it
func (h *RunHandler) RunScraperHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var request runRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid run request: "+err.Error())
		return
	}

	extraction, err := h.runner.Run(r.Context(), request.URL)
	if errors.Is(err, interfaces.ErrScraperNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("url", request.URL).Msg("Scraper run failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, extraction)
}

type runPipelineRequest struct {
	Domain  string `json:"domain" validate:"required"`
	ListURL string `json:"list_url,omitempty" validate:"omitempty,url"`
	Limit   int    `json:"limit,omitempty" validate:"min=0"`
}

// RunPipelineHandler handles POST /api/run/pipeline: drive a stored
// two-stage pipeline end to end
func (h *RunHandler) RunPipelineHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var request runPipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid pipeline run request: "+err.Error())
		return
	}

	run, err := h.runner.RunPipeline(r.Context(), request.Domain, request.ListURL, request.Limit)
	if errors.Is(err, interfaces.ErrIncompletePipeline) || errors.Is(err, interfaces.ErrScraperNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		// Partial results still go back to the caller
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status": "failed",
			"error":  err.Error(),
			"run":    run,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "succeeded",
		"run":    run,
	})
}
