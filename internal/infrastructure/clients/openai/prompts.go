package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
)

const scanSystemPrompt = `You are a radiology assistant screening reports for minimal trauma fractures (fractures from a fall from standing height or less, suggesting bone fragility). Return ONLY valid JSON with this schema:
{
  "riskScore": number (0-100, likelihood the patient has fragility-related fracture risk),
  "riskLevel": "low" | "medium" | "high" | "critical",
  "mtfSuspected": boolean,
  "confidence": number (0-100, your confidence in this analysis),
  "keyFindings": {
    "fractures": [{
      "location": string (anatomical site),
      "type": string (fracture pattern),
      "severity": "mild" | "moderate" | "severe",
      "mechanism": string (injury description from the report, or "unknown"),
      "isMinimalTrauma": boolean
    }],
    "riskFactors": string[] (findings such as osteopenia or prior fractures),
    "recommendations": string[] (1-4 follow-up actions),
    "followUpRequired": boolean
  }
}
Only report fractures stated in the report. Do not invent patient history. Keep recommendations short and actionable.`

func buildScanUserPrompt(report entities.Report) string {
	var b strings.Builder
	if report.ScanType != "" {
		fmt.Fprintf(&b, "Scan type: %s\n", report.ScanType)
	}
	if report.PatientAge > 0 {
		fmt.Fprintf(&b, "Patient age: %s\n", strings.TrimSuffix(fmt.Sprintf("%.1f", report.PatientAge), ".0"))
	}
	if report.PatientGender != "" {
		fmt.Fprintf(&b, "Patient gender: %s\n", report.PatientGender)
	}
	if report.ClinicalHistory != "" {
		fmt.Fprintf(&b, "Clinical history: %s\n", report.ClinicalHistory)
	}
	fmt.Fprintf(&b, "Report:\n%s\n", report.ReportText)
	return b.String()
}

// stripCodeFence removes a surrounding markdown code block, if any.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

// parseScanPayload decodes model output into a scan result. Only invalid JSON
// is an error; wrong types and out-of-range values fall back to defaults.
func parseScanPayload(text string) (entities.ScanResult, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return entities.ScanResult{}, fmt.Errorf("failed to parse scan payload: %w", err)
	}
	return triage.ScanResultFromMap(raw), nil
}
