package entities

// Severity grades a detected fracture.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// RiskLevel is the qualitative risk reported by scan analysis.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Fracture is one finding detected in a radiology report.
type Fracture struct {
	Location        string   `json:"location" validate:"max=500"`
	Type            string   `json:"type" validate:"max=200"`
	Severity        Severity `json:"severity" validate:"omitempty,oneof=mild moderate severe"`
	Mechanism       string   `json:"mechanism" validate:"max=1000"`
	IsMinimalTrauma bool     `json:"isMinimalTrauma"`
}

// KeyFindings groups the structured findings extracted from a report.
type KeyFindings struct {
	Fractures        []Fracture `json:"fractures" validate:"dive"`
	RiskFactors      []string   `json:"riskFactors"`
	Recommendations  []string   `json:"recommendations"`
	FollowUpRequired bool       `json:"followUpRequired"`
}

// ScanResult is the output of the external scan-analysis step. It is never
// mutated by the triage engine.
type ScanResult struct {
	PatientID      string      `json:"patientId"`
	RiskScore      float64     `json:"riskScore" validate:"gte=0,lte=100"`
	RiskLevel      RiskLevel   `json:"riskLevel" validate:"required,oneof=low medium high critical"`
	MTFSuspected   bool        `json:"mtfSuspected"`
	Confidence     float64     `json:"confidence" validate:"gte=0,lte=100"`
	KeyFindings    KeyFindings `json:"keyFindings"`
	ProcessingTime float64     `json:"processingTime" validate:"gte=0"`

	// Failed marks a placeholder produced when the collaborator call failed.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}
