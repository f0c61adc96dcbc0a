package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/apperrors"
	"github.com/weldhq/weld-engine/pkg/services"
)

// AnalysisRequest is the body of a relationship analysis call.
type AnalysisRequest struct {
	DataSourceIDs []string `json:"data_source_ids"`
}

// AnalysisHandler exposes the relationship analysis pipeline over HTTP.
type AnalysisHandler struct {
	analysis services.RelationshipAnalysisService
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysis services.RelationshipAnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		logger:   logger.Named("analysis-handler"),
	}
}

// RegisterRoutes registers the analysis handler's routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects/{pid}/relationship-analysis", h.Analyze)
}

// Analyze handles POST /api/projects/{pid}/relationship-analysis requests.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("pid")

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if req.DataSourceIDs == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "data_source_ids is required")
		return
	}

	result, err := h.analysis.Analyze(r.Context(), projectID, req.DataSourceIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSelection) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_selection", err.Error())
			return
		}
		h.logger.Error("analysis failed",
			zap.String("project_id", projectID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", "relationship analysis failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}
