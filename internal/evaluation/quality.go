package evaluation

import (
	"fmt"
	"strconv"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// QualityConfig holds the thresholds of the post-hoc consistency checks.
type QualityConfig struct {
	MinConfidence                  float64
	MinMTFRiskScore                float64
	MinHighPriorityRecommendations int
	MaxProcessingTimeMs            float64
}

// QualityChecker annotates completed results with consistency warnings. It
// never rejects a result.
type QualityChecker struct {
	config QualityConfig
}

const (
	deductLowConfidence      = 20
	deductMTFLowScore        = 15
	deductMTFNoFractures     = 20
	deductFewRecommendations = 10
	deductSlowProcessing     = 5
)

func NewQualityChecker(config QualityConfig) *QualityChecker {
	if config.MinConfidence <= 0 {
		config.MinConfidence = 70
	}
	if config.MinMTFRiskScore <= 0 {
		config.MinMTFRiskScore = 50
	}
	if config.MinHighPriorityRecommendations <= 0 {
		config.MinHighPriorityRecommendations = 2
	}
	if config.MaxProcessingTimeMs <= 0 {
		config.MaxProcessingTimeMs = 5000
	}
	return &QualityChecker{config: config}
}

// IsLowConfidence reports whether a scan falls under the confidence threshold.
func (q *QualityChecker) IsLowConfidence(scan entities.ScanResult) bool {
	return scan.Confidence < q.config.MinConfidence
}

// Check scores a scan result, and the assessment derived from it when one
// exists. The score starts at 100 and never drops below 0.
func (q *QualityChecker) Check(scan entities.ScanResult, assessment *entities.RiskAssessment) entities.QualityReport {
	report := entities.QualityReport{Score: 100, Issues: []string{}, Suggestions: []string{}}
	flag := func(points int, issue, suggestion string) {
		report.Score -= points
		report.Issues = append(report.Issues, issue)
		report.Suggestions = append(report.Suggestions, suggestion)
	}

	if q.IsLowConfidence(scan) {
		flag(deductLowConfidence,
			fmt.Sprintf("Low confidence score (%s%%)", num(scan.Confidence)),
			"Have a radiologist review the report manually")
	}
	if scan.MTFSuspected && scan.RiskScore < q.config.MinMTFRiskScore {
		flag(deductMTFLowScore,
			fmt.Sprintf("MTF suspected with low risk score (%s)", num(scan.RiskScore)),
			"Verify the MTF classification against the reported risk score")
	}
	if scan.MTFSuspected && len(scan.KeyFindings.Fractures) == 0 {
		flag(deductMTFNoFractures,
			"MTF suspected but no fractures identified",
			"Review the report for missed fracture findings")
	}
	if assessment != nil && assessment.Priority == entities.PriorityHigh &&
		len(assessment.Recommendations) < q.config.MinHighPriorityRecommendations {
		flag(deductFewRecommendations,
			"High priority with fewer than 2 recommendations",
			"Add specific follow-up recommendations")
	}
	if scan.ProcessingTime > q.config.MaxProcessingTimeMs {
		flag(deductSlowProcessing,
			fmt.Sprintf("Slow processing time (%sms)", num(scan.ProcessingTime)),
			"Investigate scan analysis latency")
	}

	if report.Score < 0 {
		report.Score = 0
	}
	return report
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
