package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/models"
	"autoscraper/internal/orchestrator"
)

// BuildHandler drives build sessions over HTTP. Builds run synchronously;
// the response carries the full session trail either way.
type BuildHandler struct {
	orchestrator *orchestrator.Orchestrator
	pipelines    *orchestrator.PipelineBuilder
	validate     *validator.Validate
	logger       arbor.ILogger
}

// NewBuildHandler creates a build handler
func NewBuildHandler(orch *orchestrator.Orchestrator, pipelines *orchestrator.PipelineBuilder, logger arbor.ILogger) *BuildHandler {
	return &BuildHandler{
		orchestrator: orch,
		pipelines:    pipelines,
		validate:     validator.New(),
		logger:       logger,
	}
}

// BuildScraperHandler handles POST /api/build
func (h *BuildHandler) BuildScraperHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var request models.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if request.Kind == "" {
		request.Kind = models.ScraperKindContent
	}
	if err := h.validate.Struct(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid build request: "+err.Error())
		return
	}

	session, err := h.orchestrator.Run(r.Context(), request)
	if err != nil {
		h.logger.Warn().Err(err).Str("url", request.URL).Msg("Build failed")
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status":  "failed",
			"error":   err.Error(),
			"session": session,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "succeeded",
		"session": session,
	})
}

// BuildPipelineHandler handles POST /api/pipelines
func (h *BuildHandler) BuildPipelineHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var request orchestrator.PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid pipeline request: "+err.Error())
		return
	}

	result, err := h.pipelines.Build(r.Context(), request)
	if err != nil {
		h.logger.Warn().Err(err).Str("list_url", request.ListURL).Msg("Pipeline build failed")
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status": "failed",
			"error":  err.Error(),
			"result": result,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "succeeded",
		"result": result,
	})
}
