package triage

import (
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// Engine evaluates scan results against patient context. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	rules Rules
}

// Result is the full output of a single assessment.
type Result struct {
	AdjustedScore float64
	Assessment    entities.RiskAssessment
}

// NewEngine creates an engine bound to a private copy of rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules.clone()}
}

// Rules returns a copy of the engine's rule set.
func (e *Engine) Rules() Rules {
	return e.rules.clone()
}

// Assess runs the whole pipeline: adjust, classify, then derive the
// dependent outputs from the shared priority.
func (e *Engine) Assess(scan entities.ScanResult, patient entities.PatientContext) Result {
	scan = NormalizeScanResult(scan)
	patient = normalizePatient(patient)

	adjusted := e.adjust(scan, patient)
	class := e.classify(adjusted, scan, patient)
	estimate := e.estimate(class.Priority, scan, patient)

	return Result{
		AdjustedScore: adjusted,
		Assessment: entities.RiskAssessment{
			Priority:           class.Priority,
			Urgency:            class.Urgency,
			Recommendations:    e.recommend(scan, patient, class.Priority),
			FollowUpRequired:   scan.KeyFindings.FollowUpRequired || scan.MTFSuspected || class.Priority != entities.PriorityLow,
			SpecialistReferral: estimate.SpecialistReferral,
			EstimatedCost:      estimate.EstimatedCost,
			RiskFactors:        e.riskFactors(scan, patient),
			PreventionMeasures: e.preventionMeasures(patient, class.Priority),
		},
	}
}

// Adjust returns the adjusted risk score in [0, 100].
func (e *Engine) Adjust(scan entities.ScanResult, patient entities.PatientContext) float64 {
	return e.adjust(NormalizeScanResult(scan), normalizePatient(patient))
}

// Classify maps an adjusted score onto a priority and urgency window.
func (e *Engine) Classify(adjusted float64, scan entities.ScanResult, patient entities.PatientContext) Classification {
	return e.classify(clamp(finite(adjusted), 0, 100), NormalizeScanResult(scan), normalizePatient(patient))
}

// Recommend returns the de-duplicated, sorted recommended actions.
func (e *Engine) Recommend(scan entities.ScanResult, patient entities.PatientContext, priority entities.Priority) []string {
	return e.recommend(NormalizeScanResult(scan), normalizePatient(patient), ParsePriority(string(priority)))
}

// Estimate returns the referral decision and cost estimate.
func (e *Engine) Estimate(priority entities.Priority, scan entities.ScanResult, patient entities.PatientContext) Estimate {
	return e.estimate(ParsePriority(string(priority)), NormalizeScanResult(scan), normalizePatient(patient))
}

// MedicationCategories returns the distinct risk categories matched by
// medications, in catalog order. A medication matching several categories
// counts toward each of them.
func (e *Engine) MedicationCategories(medications []string) []string {
	var matched []string
	for _, rule := range e.rules.Medications {
		for _, med := range medications {
			if rule.Pattern.MatchString(med) {
				matched = append(matched, rule.Category)
				break
			}
		}
	}
	return matched
}
