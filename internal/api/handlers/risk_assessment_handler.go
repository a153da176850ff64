package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/mtf-triage/backend/internal/application/services"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
)

// RiskAssessmentHandler handles risk assessment HTTP requests
type RiskAssessmentHandler struct {
	service *services.RiskAssessmentService
}

// NewRiskAssessmentHandler creates a new risk assessment handler
func NewRiskAssessmentHandler(service *services.RiskAssessmentService) *RiskAssessmentHandler {
	return &RiskAssessmentHandler{service: service}
}

// Assess handles POST /risk-assessment
func (h *RiskAssessmentHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req services.AssessmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Assess(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetAssessment handles GET /risk-assessments/{id}
func (h *RiskAssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	record, err := h.service.GetAssessment(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

// ListPatientAssessments handles GET /patients/{patientId}/risk-assessments
func (h *RiskAssessmentHandler) ListPatientAssessments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithAppError(w, r, apperrors.NewValidationError("Validation failed",
				apperrors.FieldError{Field: "limit", Message: "must be a positive integer"}))
			return
		}
		limit = parsed
	}

	patientID := r.PathValue("patientId")
	records, err := h.service.ListPatientAssessments(r.Context(), patientID, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patientId":   patientID,
		"assessments": records,
		"count":       len(records),
	})
}
