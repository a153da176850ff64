package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/zatekoja/mtf-triage/backend/internal/application/services"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
)

// BatchScanRequest is the body of POST /batch-scan
type BatchScanRequest struct {
	Reports []entities.Report `json:"reports"`
}

// BatchScanHandler handles batch scan and statistics HTTP requests
type BatchScanHandler struct {
	batch *services.BatchScanService
	stats *services.StatisticsService
}

// NewBatchScanHandler creates a new batch scan handler
func NewBatchScanHandler(batch *services.BatchScanService, stats *services.StatisticsService) *BatchScanHandler {
	return &BatchScanHandler{batch: batch, stats: stats}
}

// BatchScan handles POST /batch-scan
func (h *BatchScanHandler) BatchScan(w http.ResponseWriter, r *http.Request) {
	var req BatchScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.batch.RunBatch(r.Context(), req.Reports)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			observability.LoggerFromContext(r.Context()).Warn().Err(err).
				Int("completed", len(result.ScanResults)).
				Msg("Batch scan aborted by client")
			respondWithError(w, http.StatusServiceUnavailable, "batch scan cancelled")
			return
		}
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetStatistics handles GET /statistics
func (h *BatchScanHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.stats.Snapshot())
}
