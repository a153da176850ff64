package evaluation

import (
	"time"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// GoldenCase is a labeled scan/patient pair with the expected triage outcome.
// Urgency and referral are only checked when present.
type GoldenCase struct {
	ID               string                  `json:"id"`
	Description      string                  `json:"description,omitempty"`
	ScanResult       entities.ScanResult     `json:"scanResult"`
	PatientContext   entities.PatientContext `json:"patientContext"`
	ExpectedPriority entities.Priority       `json:"expectedPriority"`
	ExpectedUrgency  *int                    `json:"expectedUrgency,omitempty"`
	ExpectedReferral *bool                   `json:"expectedReferral,omitempty"`
}

// EvalResult holds the evaluation outcome for a single case.
type EvalResult struct {
	CaseID           string
	ExpectedPriority entities.Priority
	ActualPriority   entities.Priority
	ActualUrgency    int
	ActualReferral   bool
	AdjustedScore    float64
	PriorityMatch    bool
	UrgencyChecked   bool
	UrgencyMatch     bool
	ReferralChecked  bool
	ReferralMatch    bool
	Latency          time.Duration
}

// Passed reports whether every checked expectation held.
func (r EvalResult) Passed() bool {
	return r.PriorityMatch &&
		(!r.UrgencyChecked || r.UrgencyMatch) &&
		(!r.ReferralChecked || r.ReferralMatch)
}

// EvalSummary holds aggregate agreement rates across all golden cases.
type EvalSummary struct {
	TotalCases       int                                    `json:"totalCases"`
	PriorityAccuracy float64                                `json:"priorityAccuracy"`
	UrgencyCases     int                                    `json:"urgencyCases"`
	UrgencyAccuracy  float64                                `json:"urgencyAccuracy"`
	ReferralCases    int                                    `json:"referralCases"`
	ReferralAccuracy float64                                `json:"referralAccuracy"`
	AvgLatency       time.Duration                          `json:"avgLatencyNs"`
	ByPriority       map[entities.Priority]*PrioritySummary `json:"byPriority"`
	Mismatches       []string                               `json:"mismatches"`
}

// PrioritySummary holds agreement grouped by expected priority.
type PrioritySummary struct {
	Count    int     `json:"count"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
