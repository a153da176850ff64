package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
)

const (
	assessmentPathPrefix = "/risk-assessments/"
	// assessmentCacheTTLSeconds matches the max-age CacheControl sends.
	assessmentCacheTTLSeconds = 600
	maxAssessmentIDLength     = 64
)

// CacheMiddleware serves GET /risk-assessments/{id} from the cache provider.
// Stored assessments never change, so entries are never invalidated; patient
// history and statistics change with every assessment and are not cached.
type CacheMiddleware struct {
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCacheMiddleware creates a cache middleware. metrics may be nil.
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, metrics: metrics}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := cacheableAssessmentID(r)
		if !ok || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		key := "http:assessment:" + id

		cached, err := m.cache.Get(ctx, key)
		switch {
		case err == nil:
			observability.RecordCacheHit(ctx, m.metrics, "http")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				logger.Debug().Err(err).Msg("Failed to write cached response")
			}
			return
		case !errors.Is(err, providers.ErrCacheMiss):
			logger.Debug().Err(err).Msg("Response cache unavailable")
			next.ServeHTTP(w, r)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, "http")
		w.Header().Set("X-Cache", "MISS")

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.statusCode == http.StatusOK && rec.body.Len() > 0 {
			if err := m.cache.Set(ctx, key, rec.body.Bytes(), assessmentCacheTTLSeconds); err != nil {
				logger.Warn().Err(err).Str("assessment_id", id).Msg("Failed to cache assessment response")
			}
		}
	})
}

// cacheableAssessmentID extracts {id} from GET /risk-assessments/{id}
func cacheableAssessmentID(r *http.Request) (string, bool) {
	if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, assessmentPathPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(r.URL.Path, assessmentPathPrefix)
	if id == "" || len(id) > maxAssessmentIDLength || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// responseRecorder tees the response to the client and a buffer
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
