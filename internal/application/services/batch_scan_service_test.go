package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/mtf-triage/backend/internal/application/services"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
)

func newBatchService(analyzer providers.ScanAnalyzer, stats *services.StatisticsService) *services.BatchScanService {
	return services.NewBatchScanService(analyzer, evaluation.NewQualityChecker(evaluation.QualityConfig{}), stats, nil, 3, 10)
}

func makeReports(n int) []entities.Report {
	reports := make([]entities.Report, n)
	for i := range reports {
		reports[i] = entities.Report{
			PatientID:  fmt.Sprintf("patient-%d", i),
			ReportText: "Lateral radiograph shows a wedge compression fracture.",
		}
	}
	return reports
}

func goodScan(patientID string) entities.ScanResult {
	return entities.ScanResult{
		PatientID:    patientID,
		RiskScore:    72,
		RiskLevel:    entities.RiskLevelHigh,
		MTFSuspected: true,
		Confidence:   90,
		KeyFindings: entities.KeyFindings{
			Fractures: []entities.Fracture{{Location: "vertebral", Severity: entities.SeverityModerate}},
		},
		ProcessingTime: 1200,
	}
}

func TestBatchScanService_PartialFailures(t *testing.T) {
	// Arrange
	analyzer := new(MockScanAnalyzer)
	stats := services.NewStatisticsService(evaluation.NewQualityChecker(evaluation.QualityConfig{}))
	reports := makeReports(10)
	failing := map[string]bool{"patient-2": true, "patient-5": true, "patient-8": true}
	for _, r := range reports {
		if failing[r.PatientID] {
			analyzer.On("Scan", mock.Anything, r).Return(entities.ScanResult{}, apperrors.NewExternalError("scan analysis failed", errors.New("timeout")))
			continue
		}
		analyzer.On("Scan", mock.Anything, r).Return(goodScan(r.PatientID), nil)
	}

	// Act
	result, err := newBatchService(analyzer, stats).RunBatch(context.Background(), reports)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.ScanResults, 10)

	failed := 0
	for i, scan := range result.ScanResults {
		assert.Equal(t, reports[i].PatientID, scan.PatientID)
		if scan.Failed {
			failed++
			assert.Zero(t, scan.Confidence)
			assert.Equal(t, entities.RiskLevelLow, scan.RiskLevel)
			assert.NotNil(t, scan.KeyFindings.Fractures)
			assert.Contains(t, scan.Error, "timeout")
		}
	}
	assert.Equal(t, 3, failed)

	assert.Equal(t, 10, result.Statistics.TotalScanned)
	assert.Equal(t, 3, result.Statistics.FailedScans)
	assert.Equal(t, 7, result.Statistics.MTFCases)
	assert.Equal(t, entities.RiskDistribution{Low: 3, High: 7}, result.Statistics.RiskDistribution)
	assert.InDelta(t, 63.0, result.Statistics.AverageConfidence, 1e-9)
	assert.Equal(t, 3, result.Statistics.QualityMetrics.LowConfidenceCases)

	assert.Equal(t, 10, stats.Snapshot().TotalScanned)
	analyzer.AssertNumberOfCalls(t, "Scan", 10)
}

func TestBatchScanService_BoundedConcurrencyAndOrder(t *testing.T) {
	var inFlight, peak int32
	var mu sync.Mutex
	var started []string

	analyzer := analyzerFunc(func(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		mu.Lock()
		started = append(started, report.PatientID)
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)
		return goodScan(report.PatientID), nil
	})
	reports := makeReports(10)

	result, err := newBatchService(analyzer, nil).RunBatch(context.Background(), reports)

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	for i, scan := range result.ScanResults {
		assert.Equal(t, reports[i].PatientID, scan.PatientID)
	}

	// every chunk starts only after the previous one finished
	require.Len(t, started, 10)
	chunkOf := func(id string) int {
		var idx int
		fmt.Sscanf(strings.TrimPrefix(id, "patient-"), "%d", &idx)
		return idx / 3
	}
	for i := 1; i < len(started); i++ {
		assert.LessOrEqual(t, chunkOf(started[i-1]), chunkOf(started[i]))
	}
}

func TestBatchScanService_CancellationStopsAfterCurrentChunk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	var cancelledCalls int32
	analyzer := analyzerFunc(func(callCtx context.Context, report entities.Report) (entities.ScanResult, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		time.Sleep(5 * time.Millisecond)
		if callCtx.Err() != nil {
			atomic.AddInt32(&cancelledCalls, 1)
		}
		return goodScan(report.PatientID), nil
	})

	result, err := newBatchService(analyzer, nil).RunBatch(ctx, makeReports(9))

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Len(t, result.ScanResults, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Zero(t, atomic.LoadInt32(&cancelledCalls))
	for _, scan := range result.ScanResults {
		assert.False(t, scan.Failed)
	}
	assert.Equal(t, 3, result.Statistics.TotalScanned)
}

func TestBatchScanService_PanicBecomesPlaceholder(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
		if report.PatientID == "patient-1" {
			panic("decoder blew up")
		}
		return goodScan(report.PatientID), nil
	})

	result, err := newBatchService(analyzer, nil).RunBatch(context.Background(), makeReports(3))

	require.NoError(t, err)
	require.Len(t, result.ScanResults, 3)
	assert.True(t, result.ScanResults[1].Failed)
	assert.Contains(t, result.ScanResults[1].Error, "decoder blew up")
	assert.False(t, result.ScanResults[0].Failed)
	assert.False(t, result.ScanResults[2].Failed)
}

func TestBatchScanService_NormalizesAnalyzerOutput(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
		return entities.ScanResult{RiskScore: 180, Confidence: -4, RiskLevel: "bogus"}, nil
	})

	result, err := newBatchService(analyzer, nil).RunBatch(context.Background(), makeReports(1))

	require.NoError(t, err)
	scan := result.ScanResults[0]
	assert.Equal(t, "patient-0", scan.PatientID)
	assert.Equal(t, 100.0, scan.RiskScore)
	assert.Equal(t, 0.0, scan.Confidence)
	assert.Equal(t, entities.RiskLevelMedium, scan.RiskLevel)
}

func TestBatchScanService_NilQualityChecker(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
		return goodScan(report.PatientID), nil
	})
	service := services.NewBatchScanService(analyzer, nil, nil, nil, 3, 10)

	result, err := service.RunBatch(context.Background(), makeReports(2))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Statistics.TotalScanned)
	assert.InDelta(t, 100.0, result.Statistics.QualityMetrics.AverageQualityScore, 1e-9)
}

func TestBatchScanService_Validation(t *testing.T) {
	analyzer := new(MockScanAnalyzer)
	service := newBatchService(analyzer, nil)

	t.Run("empty batch", func(t *testing.T) {
		_, err := service.RunBatch(context.Background(), nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("oversized batch", func(t *testing.T) {
		_, err := service.RunBatch(context.Background(), makeReports(11))

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "reports", appErr.Details[0].Field)
	})

	t.Run("invalid report", func(t *testing.T) {
		reports := makeReports(2)
		reports[1].ReportText = "short"

		_, err := service.RunBatch(context.Background(), reports)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Len(t, appErr.Details, 1)
		assert.Equal(t, "reports[1].reportText", appErr.Details[0].Field)
	})

	analyzer.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}
