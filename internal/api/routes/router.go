package routes

import (
	"net/http"

	"github.com/zatekoja/mtf-triage/backend/internal/api/handlers"
	"github.com/zatekoja/mtf-triage/backend/internal/api/middleware"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	riskAssessmentHandler *handlers.RiskAssessmentHandler
	batchScanHandler      *handlers.BatchScanHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	riskAssessmentHandler *handlers.RiskAssessmentHandler,
	batchScanHandler *handlers.BatchScanHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		riskAssessmentHandler: riskAssessmentHandler,
		batchScanHandler:      batchScanHandler,
		cacheMiddleware:       cacheMiddleware,
		allowedOrigins:        allowedOrigins,
		metrics:               metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Risk assessment endpoints
	r.mux.HandleFunc("POST /risk-assessment", r.riskAssessmentHandler.Assess)
	r.mux.HandleFunc("GET /risk-assessments/{id}", r.riskAssessmentHandler.GetAssessment)
	r.mux.HandleFunc("GET /patients/{patientId}/risk-assessments", r.riskAssessmentHandler.ListPatientAssessments)

	// Batch scan endpoints
	r.mux.HandleFunc("POST /batch-scan", r.batchScanHandler.BatchScan)
	r.mux.HandleFunc("GET /statistics", r.batchScanHandler.GetStatistics)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = middleware.CaptureRoute(r.mux)

	// Cached bodies are stored uncompressed, so caching sits inside compression
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
