package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/mtf-triage/backend/internal/application/services"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
)

func TestStatisticsService_Snapshot(t *testing.T) {
	stats := services.NewStatisticsService(evaluation.NewQualityChecker(evaluation.QualityConfig{}))

	assert.Equal(t, entities.BatchStatistics{}, stats.Snapshot())

	stats.Record(
		entities.ScanResult{RiskLevel: entities.RiskLevelHigh, Confidence: 90, ProcessingTime: 1000, MTFSuspected: true, RiskScore: 80,
			KeyFindings: entities.KeyFindings{Fractures: []entities.Fracture{{Location: "hip"}}}},
		entities.ScanResult{RiskLevel: entities.RiskLevelLow, Confidence: 60, ProcessingTime: 3000},
	)
	stats.Record(entities.ScanResult{RiskLevel: entities.RiskLevelCritical, Confidence: 90, ProcessingTime: 2000, Failed: true})
	stats.Record()

	got := stats.Snapshot()
	assert.Equal(t, 3, got.TotalScanned)
	assert.Equal(t, 1, got.MTFCases)
	assert.Equal(t, 1, got.FailedScans)
	assert.Equal(t, entities.RiskDistribution{Low: 1, High: 1, Critical: 1}, got.RiskDistribution)
	assert.InDelta(t, 80.0, got.AverageConfidence, 1e-9)
	assert.InDelta(t, 2000.0, got.AverageProcessingTime, 1e-9)
	// only the 60% confidence scan is penalised
	assert.InDelta(t, (100.0+80.0+100.0)/3, got.QualityMetrics.AverageQualityScore, 1e-9)
	assert.Equal(t, 1, got.QualityMetrics.IssuesCount)
	assert.Equal(t, 1, got.QualityMetrics.LowConfidenceCases)
}

func TestStatisticsService_NilQualityChecker(t *testing.T) {
	stats := services.NewStatisticsService(nil)

	assert.NotPanics(t, func() {
		stats.Record(entities.ScanResult{RiskLevel: entities.RiskLevelLow, Confidence: 60})
	})
	got := stats.Snapshot()
	assert.Equal(t, 1, got.TotalScanned)
	assert.Equal(t, 1, got.QualityMetrics.LowConfidenceCases)
}

func TestStatisticsService_ConcurrentRecord(t *testing.T) {
	stats := services.NewStatisticsService(evaluation.NewQualityChecker(evaluation.QualityConfig{}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.Record(entities.ScanResult{RiskLevel: entities.RiskLevelMedium, Confidence: 80})
		}()
	}
	wg.Wait()

	got := stats.Snapshot()
	assert.Equal(t, 20, got.TotalScanned)
	assert.Equal(t, 20, got.RiskDistribution.Medium)
	assert.InDelta(t, 80.0, got.AverageConfidence, 1e-9)
}
