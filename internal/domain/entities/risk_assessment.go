package entities

import "time"

// Priority is the triage tier driving urgency and downstream actions.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities low < medium < high < critical. Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

// RiskAssessment is the triage engine's output.
type RiskAssessment struct {
	Priority           Priority `json:"priority"`
	Urgency            int      `json:"urgency"`
	Recommendations    []string `json:"recommendations"`
	FollowUpRequired   bool     `json:"followUpRequired"`
	SpecialistReferral bool     `json:"specialistReferral"`
	EstimatedCost      float64  `json:"estimatedCost"`
	RiskFactors        []string `json:"riskFactors"`
	PreventionMeasures []string `json:"preventionMeasures"`
}

// QualityReport annotates a scan/assessment pair with consistency warnings.
type QualityReport struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// AssessmentRecord is a persisted risk assessment.
type AssessmentRecord struct {
	ID                string         `json:"id"`
	PatientID         string         `json:"patientId"`
	AdjustedRiskScore float64        `json:"adjustedRiskScore"`
	Assessment        RiskAssessment `json:"riskAssessment"`
	Summary           string         `json:"assessmentSummary"`
	ScanResult        ScanResult     `json:"scanResult"`
	Quality           QualityReport  `json:"qualityReport"`
	CreatedAt         time.Time      `json:"createdAt"`
}
