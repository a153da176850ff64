package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
)

// CachedScanAnalyzer wraps a ScanAnalyzer with a result cache. Identical
// reports are analyzed once per TTL; failures are never cached.
type CachedScanAnalyzer struct {
	analyzer   providers.ScanAnalyzer
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

// NewCachedScanAnalyzer creates a new cached scan analyzer
func NewCachedScanAnalyzer(analyzer providers.ScanAnalyzer, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) providers.ScanAnalyzer {
	return &CachedScanAnalyzer{
		analyzer:   analyzer,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

// ScanCacheKey derives the cache key of a report. Whitespace and letter case
// differences in the free-text fields do not change the key.
func ScanCacheKey(report entities.Report) string {
	normalized := strings.Join([]string{
		strings.TrimSpace(report.PatientID),
		strings.Join(strings.Fields(report.ReportText), " "),
		strings.ToLower(strings.TrimSpace(report.ScanType)),
		strconv.FormatFloat(report.PatientAge, 'f', -1, 64),
		strings.ToLower(strings.TrimSpace(report.PatientGender)),
		strings.Join(strings.Fields(report.ClinicalHistory), " "),
	}, "\x1f")
	sum := sha256.Sum256([]byte(normalized))
	return "scan:" + hex.EncodeToString(sum[:])
}

// Scan returns the cached result for report, or analyzes and caches it
func (a *CachedScanAnalyzer) Scan(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
	key := ScanCacheKey(report)
	logger := observability.LoggerFromContext(ctx)

	cached, err := a.cache.Get(ctx, key)
	if err == nil {
		var scan entities.ScanResult
		if err := json.Unmarshal(cached, &scan); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "scan")
			return scan, nil
		}
		logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cached scan result")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("Scan cache unavailable, analyzing without cache")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "scan")

	scan, err := a.analyzer.Scan(ctx, report)
	if err != nil {
		return scan, err
	}
	if scan.Failed {
		return scan, nil
	}

	if data, err := json.Marshal(scan); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttlSeconds); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache scan result")
		}
	}
	return scan, nil
}
