package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCount    metric.Int64Counter
	RequestDuration metric.Float64Histogram
	DBQueryDuration metric.Float64Histogram
	CacheHitCount   metric.Int64Counter
	CacheMissCount  metric.Int64Counter

	AssessmentCount metric.Int64Counter
	AdjustedScore   metric.Float64Histogram
	BatchSize       metric.Int64Histogram
	ScanFailures    metric.Int64Counter
}

// InitMetrics initializes application metrics against the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.RequestCount, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.CacheHitCount, err = meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	); err != nil {
		return nil, err
	}
	if m.CacheMissCount, err = meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	); err != nil {
		return nil, err
	}
	if m.AssessmentCount, err = meter.Int64Counter(
		"triage.assessment.count",
		metric.WithDescription("Number of risk assessments by priority"),
	); err != nil {
		return nil, err
	}
	if m.AdjustedScore, err = meter.Float64Histogram(
		"triage.adjusted_score",
		metric.WithDescription("Distribution of adjusted risk scores"),
	); err != nil {
		return nil, err
	}
	if m.BatchSize, err = meter.Int64Histogram(
		"triage.batch.size",
		metric.WithDescription("Number of reports per batch scan"),
	); err != nil {
		return nil, err
	}
	if m.ScanFailures, err = meter.Int64Counter(
		"triage.scan.failures",
		metric.WithDescription("Number of reports whose scan analysis failed"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRequestMetric records an HTTP request
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordDBMetric records a database operation metric
func RecordDBMetric(ctx context.Context, metrics *Metrics, operation string, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
	}
	metrics.DBQueryDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCacheHit records a cache hit for a key family such as "scan"
func RecordCacheHit(ctx context.Context, metrics *Metrics, keyFamily string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key_family", keyFamily)))
}

// RecordCacheMiss records a cache miss for a key family such as "scan"
func RecordCacheMiss(ctx context.Context, metrics *Metrics, keyFamily string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key_family", keyFamily)))
}

// RecordAssessmentMetric records one completed risk assessment
func RecordAssessmentMetric(ctx context.Context, metrics *Metrics, priority string, adjustedScore float64) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("triage.priority", priority))
	metrics.AssessmentCount.Add(ctx, 1, attrs)
	metrics.AdjustedScore.Record(ctx, adjustedScore, attrs)
}

// RecordBatchMetric records a completed batch and how many of its scans failed
func RecordBatchMetric(ctx context.Context, metrics *Metrics, size, failures int) {
	if metrics == nil {
		return
	}
	metrics.BatchSize.Record(ctx, int64(size))
	if failures > 0 {
		metrics.ScanFailures.Add(ctx, int64(failures))
	}
}
