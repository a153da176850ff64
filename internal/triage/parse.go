package triage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// Gender is the engine's normalized view of the free-text gender field.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderFemale
	GenderMale
)

// ParseGender normalizes free-text gender. Anything unrecognized is GenderUnknown.
func ParseGender(raw string) Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "female", "f", "woman":
		return GenderFemale
	case "male", "m", "man":
		return GenderMale
	default:
		return GenderUnknown
	}
}

// ParseSeverity normalizes a fracture severity. Unknown or missing values become moderate.
func ParseSeverity(raw string) entities.Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mild", "minor", "low":
		return entities.SeverityMild
	case "moderate", "medium":
		return entities.SeverityModerate
	case "severe", "major", "high":
		return entities.SeveritySevere
	default:
		return entities.SeverityModerate
	}
}

// ParseRiskLevel normalizes a qualitative risk level. Unknown or missing values become medium.
func ParseRiskLevel(raw string) entities.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low", "minimal":
		return entities.RiskLevelLow
	case "medium", "moderate":
		return entities.RiskLevelMedium
	case "high", "elevated":
		return entities.RiskLevelHigh
	case "critical", "severe", "very high":
		return entities.RiskLevelCritical
	default:
		return entities.RiskLevelMedium
	}
}

// ParsePriority normalizes a priority tier. Unknown or missing values become low.
func ParsePriority(raw string) entities.Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return entities.PriorityCritical
	case "high":
		return entities.PriorityHigh
	case "medium":
		return entities.PriorityMedium
	default:
		return entities.PriorityLow
	}
}

// CoerceBool is true only for a JSON boolean true. Strings, numbers and nulls are false.
func CoerceBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// CoerceNumber converts JSON numbers and numeric strings. ok is false for anything else.
func CoerceNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceString returns v when it is a string, "" otherwise.
func CoerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// CoerceStrings keeps the non-empty string elements of a JSON array.
func CoerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := CoerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ScanResultFromMap builds a ScanResult from loosely typed AI output. Every
// field falls back to a safe default instead of failing.
func ScanResultFromMap(raw map[string]any) entities.ScanResult {
	scan := entities.ScanResult{
		PatientID:    CoerceString(raw["patientId"]),
		RiskLevel:    ParseRiskLevel(CoerceString(raw["riskLevel"])),
		MTFSuspected: CoerceBool(raw["mtfSuspected"]),
	}
	if v, ok := CoerceNumber(raw["riskScore"]); ok {
		scan.RiskScore = clamp(v, 0, 100)
	}
	if v, ok := CoerceNumber(raw["confidence"]); ok {
		scan.Confidence = clamp(v, 0, 100)
	}
	if v, ok := CoerceNumber(raw["processingTime"]); ok && v > 0 {
		scan.ProcessingTime = v
	}

	findings, _ := raw["keyFindings"].(map[string]any)
	scan.KeyFindings = entities.KeyFindings{
		Fractures:        []entities.Fracture{},
		RiskFactors:      CoerceStrings(findings["riskFactors"]),
		Recommendations:  CoerceStrings(findings["recommendations"]),
		FollowUpRequired: CoerceBool(findings["followUpRequired"]),
	}
	if items, ok := findings["fractures"].([]any); ok {
		for _, item := range items {
			f, ok := item.(map[string]any)
			if !ok {
				continue
			}
			scan.KeyFindings.Fractures = append(scan.KeyFindings.Fractures, entities.Fracture{
				Location:        CoerceString(f["location"]),
				Type:            CoerceString(f["type"]),
				Severity:        ParseSeverity(CoerceString(f["severity"])),
				Mechanism:       CoerceString(f["mechanism"]),
				IsMinimalTrauma: CoerceBool(f["isMinimalTrauma"]),
			})
		}
	}
	return scan
}

// NormalizeScanResult returns a copy of scan with numeric fields clamped and
// enums coerced. The input is left untouched.
func NormalizeScanResult(scan entities.ScanResult) entities.ScanResult {
	out := scan
	out.RiskScore = clamp(finite(scan.RiskScore), 0, 100)
	out.Confidence = clamp(finite(scan.Confidence), 0, 100)
	out.ProcessingTime = math.Max(finite(scan.ProcessingTime), 0)
	out.RiskLevel = ParseRiskLevel(string(scan.RiskLevel))

	out.KeyFindings.Fractures = make([]entities.Fracture, len(scan.KeyFindings.Fractures))
	for i, f := range scan.KeyFindings.Fractures {
		f.Severity = ParseSeverity(string(f.Severity))
		out.KeyFindings.Fractures[i] = f
	}
	out.KeyFindings.RiskFactors = append([]string(nil), scan.KeyFindings.RiskFactors...)
	out.KeyFindings.Recommendations = append([]string(nil), scan.KeyFindings.Recommendations...)
	return out
}

func normalizePatient(p entities.PatientContext) entities.PatientContext {
	out := p
	out.Age = clamp(finite(p.Age), 0, 150)
	if out.PreviousFractures < 0 {
		out.PreviousFractures = 0
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
