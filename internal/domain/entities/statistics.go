package entities

// RiskDistribution counts scan results per risk level.
type RiskDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Add increments the bucket for level. Unknown levels count as low.
func (d *RiskDistribution) Add(level RiskLevel) {
	switch level {
	case RiskLevelCritical:
		d.Critical++
	case RiskLevelHigh:
		d.High++
	case RiskLevelMedium:
		d.Medium++
	default:
		d.Low++
	}
}

// QualityMetrics aggregates quality checks over many results.
type QualityMetrics struct {
	AverageQualityScore float64 `json:"averageQualityScore"`
	IssuesCount         int     `json:"issuesCount"`
	LowConfidenceCases  int     `json:"lowConfidenceCases"`
}

// BatchStatistics describes a set of scan results.
type BatchStatistics struct {
	TotalScanned          int              `json:"totalScanned"`
	MTFCases              int              `json:"mtfCases"`
	FailedScans           int              `json:"failedScans"`
	RiskDistribution      RiskDistribution `json:"riskDistribution"`
	AverageConfidence     float64          `json:"averageConfidence"`
	AverageProcessingTime float64          `json:"averageProcessingTime"`
	QualityMetrics        QualityMetrics   `json:"qualityMetrics"`
}
