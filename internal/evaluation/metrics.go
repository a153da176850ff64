package evaluation

import (
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// ComputeBatchStatistics aggregates a set of scan results. Failed scans are
// included in every count and mean, the same as successful ones. A nil
// checker uses the default thresholds.
func ComputeBatchStatistics(results []entities.ScanResult, checker *QualityChecker) entities.BatchStatistics {
	if checker == nil {
		checker = NewQualityChecker(QualityConfig{})
	}
	stats := entities.BatchStatistics{TotalScanned: len(results)}
	if len(results) == 0 {
		return stats
	}

	var confidence, processing float64
	var quality int
	for _, r := range results {
		if r.MTFSuspected {
			stats.MTFCases++
		}
		if r.Failed {
			stats.FailedScans++
		}
		stats.RiskDistribution.Add(r.RiskLevel)
		confidence += r.Confidence
		processing += r.ProcessingTime

		report := checker.Check(r, nil)
		quality += report.Score
		stats.QualityMetrics.IssuesCount += len(report.Issues)
		if checker.IsLowConfidence(r) {
			stats.QualityMetrics.LowConfidenceCases++
		}
	}

	n := float64(len(results))
	stats.AverageConfidence = confidence / n
	stats.AverageProcessingTime = processing / n
	stats.QualityMetrics.AverageQualityScore = float64(quality) / n
	return stats
}
