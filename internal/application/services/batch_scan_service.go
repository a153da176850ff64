package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
	"github.com/zatekoja/mtf-triage/backend/pkg/validation"
)

// BatchResult is the output of a batch scan
type BatchResult struct {
	ScanResults []entities.ScanResult    `json:"scanResults"`
	Statistics  entities.BatchStatistics `json:"statistics"`
}

// BatchScanService analyzes reports in fixed-size chunks. At most chunkSize
// scans are in flight at once and a chunk finishes before the next starts.
type BatchScanService struct {
	analyzer     providers.ScanAnalyzer
	quality      *evaluation.QualityChecker
	stats        *StatisticsService
	metrics      *observability.Metrics
	chunkSize    int
	maxBatchSize int
}

// NewBatchScanService creates a new batch scan service
func NewBatchScanService(
	analyzer providers.ScanAnalyzer,
	quality *evaluation.QualityChecker,
	stats *StatisticsService,
	metrics *observability.Metrics,
	chunkSize, maxBatchSize int,
) *BatchScanService {
	if chunkSize <= 0 {
		chunkSize = 3
	}
	if maxBatchSize <= 0 {
		maxBatchSize = 10
	}
	if quality == nil {
		quality = evaluation.NewQualityChecker(evaluation.QualityConfig{})
	}
	return &BatchScanService{
		analyzer:     analyzer,
		quality:      quality,
		stats:        stats,
		metrics:      metrics,
		chunkSize:    chunkSize,
		maxBatchSize: maxBatchSize,
	}
}

// MaxBatchSize returns the largest accepted batch
func (s *BatchScanService) MaxBatchSize() int {
	return s.maxBatchSize
}

// RunBatch analyzes reports and returns one result per report, in input
// order. A failed analysis yields a placeholder result instead of an error.
// If ctx is cancelled no further chunks start; the results of completed
// chunks are returned together with ctx.Err().
func (s *BatchScanService) RunBatch(ctx context.Context, reports []entities.Report) (*BatchResult, error) {
	ctx, span := observability.StartSpan(ctx, "BatchScanService.RunBatch")
	defer span.End()

	if err := s.validate(reports); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)
	results := make([]entities.ScanResult, 0, len(reports))
	var runErr error
	for start := 0; start < len(reports); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			runErr = err
			logger.Warn().Err(err).
				Int("completed", len(results)).
				Int("total", len(reports)).
				Msg("Batch cancelled, skipping remaining chunks")
			break
		}
		end := min(start+s.chunkSize, len(reports))
		results = append(results, s.scanChunk(ctx, reports[start:end])...)
	}

	stats := evaluation.ComputeBatchStatistics(results, s.quality)
	if s.stats != nil {
		s.stats.Record(results...)
	}
	observability.RecordBatchMetric(ctx, s.metrics, len(results), stats.FailedScans)
	observability.SetSpanAttributes(span,
		attribute.Int("triage.batch.size", len(reports)),
		attribute.Int("triage.batch.completed", len(results)),
		attribute.Int("triage.batch.failed", stats.FailedScans),
	)
	logger.Info().
		Int("total", len(results)).
		Int("failed", stats.FailedScans).
		Int("mtf_cases", stats.MTFCases).
		Msg("Batch scan completed")

	return &BatchResult{ScanResults: results, Statistics: stats}, runErr
}

func (s *BatchScanService) validate(reports []entities.Report) error {
	if len(reports) == 0 || len(reports) > s.maxBatchSize {
		return apperrors.NewValidationError("Validation failed", apperrors.FieldError{
			Field:   "reports",
			Message: fmt.Sprintf("must contain between 1 and %d reports", s.maxBatchSize),
		})
	}

	var details []apperrors.FieldError
	for i, report := range reports {
		err := validation.Struct(report)
		if err == nil {
			continue
		}
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			return err
		}
		details = append(details, apperrors.PrefixFields("reports["+strconv.Itoa(i)+"]", appErr.Details)...)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("Validation failed", details...)
	}
	return nil
}

// scanChunk analyzes one chunk concurrently. Calls run detached from ctx's
// cancellation so a dispatched chunk always completes.
func (s *BatchScanService) scanChunk(ctx context.Context, chunk []entities.Report) []entities.ScanResult {
	callCtx := context.WithoutCancel(ctx)
	out := make([]entities.ScanResult, len(chunk))

	var g errgroup.Group
	for i, report := range chunk {
		g.Go(func() error {
			out[i] = s.scanOne(callCtx, report)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *BatchScanService) scanOne(ctx context.Context, report entities.Report) (result entities.ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failedScan(report, fmt.Errorf("scan analysis panicked: %v", r))
			observability.LoggerFromContext(ctx).Error().
				Str("patient_id", report.PatientID).
				Interface("panic", r).
				Msg("Scan analysis panicked")
		}
	}()

	scan, err := s.analyzer.Scan(ctx, report)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("patient_id", report.PatientID).
			Msg("Scan analysis failed, using placeholder result")
		return failedScan(report, err)
	}
	if scan.PatientID == "" {
		scan.PatientID = report.PatientID
	}
	return triage.NormalizeScanResult(scan)
}

// failedScan is the zero-confidence placeholder for a report whose analysis failed
func failedScan(report entities.Report, err error) entities.ScanResult {
	return entities.ScanResult{
		PatientID: report.PatientID,
		RiskLevel: entities.RiskLevelLow,
		KeyFindings: entities.KeyFindings{
			Fractures:       []entities.Fracture{},
			RiskFactors:     []string{},
			Recommendations: []string{},
		},
		Failed: true,
		Error:  err.Error(),
	}
}
