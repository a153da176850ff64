package services

import (
	"sync"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
)

// StatisticsService accumulates scan results across batches and single
// assessments for the service-wide statistics endpoint.
type StatisticsService struct {
	quality *evaluation.QualityChecker

	mu            sync.Mutex
	totals        entities.BatchStatistics
	sumConfidence float64
	sumProcessing float64
	sumQuality    float64
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(quality *evaluation.QualityChecker) *StatisticsService {
	if quality == nil {
		quality = evaluation.NewQualityChecker(evaluation.QualityConfig{})
	}
	return &StatisticsService{quality: quality}
}

// Record adds results to the running totals
func (s *StatisticsService) Record(results ...entities.ScanResult) {
	if len(results) == 0 {
		return
	}
	batch := evaluation.ComputeBatchStatistics(results, s.quality)
	n := float64(batch.TotalScanned)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals.TotalScanned += batch.TotalScanned
	s.totals.MTFCases += batch.MTFCases
	s.totals.FailedScans += batch.FailedScans
	s.totals.RiskDistribution.Low += batch.RiskDistribution.Low
	s.totals.RiskDistribution.Medium += batch.RiskDistribution.Medium
	s.totals.RiskDistribution.High += batch.RiskDistribution.High
	s.totals.RiskDistribution.Critical += batch.RiskDistribution.Critical
	s.totals.QualityMetrics.IssuesCount += batch.QualityMetrics.IssuesCount
	s.totals.QualityMetrics.LowConfidenceCases += batch.QualityMetrics.LowConfidenceCases

	s.sumConfidence += batch.AverageConfidence * n
	s.sumProcessing += batch.AverageProcessingTime * n
	s.sumQuality += batch.QualityMetrics.AverageQualityScore * n
}

// Snapshot returns the statistics over everything recorded so far
func (s *StatisticsService) Snapshot() entities.BatchStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.totals
	if out.TotalScanned > 0 {
		n := float64(out.TotalScanned)
		out.AverageConfidence = s.sumConfidence / n
		out.AverageProcessingTime = s.sumProcessing / n
		out.QualityMetrics.AverageQualityScore = s.sumQuality / n
	}
	return out
}
