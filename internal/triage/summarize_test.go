package triage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
)

func TestSummarize(t *testing.T) {
	assessment := entities.RiskAssessment{
		Priority:           entities.PriorityHigh,
		Urgency:            12,
		SpecialistReferral: true,
		RiskFactors:        []string{"f1", "f2", "f3", "f4", "f5", "f6"},
		Recommendations:    []string{"r1", "r2", "r3", "r4"},
	}
	s := entities.ScanResult{RiskScore: 72.5, RiskLevel: entities.RiskLevelHigh, Confidence: 88, MTFSuspected: true}

	summary := triage.Summarize(assessment, s)

	assert.Equal(t, strings.Join([]string{
		"MTF Risk Assessment",
		"Priority: HIGH (follow-up within 12 hours)",
		"MTF Suspected: Yes",
		"Risk Level: high",
		"Risk Score: 72.5/100",
		"Confidence: 88%",
		"Specialist Referral: Yes",
		"Key Risk Factors: f1, f2, f3, f4, f5",
		"Top Recommendations:",
		"  1. r1",
		"  2. r2",
		"  3. r3",
	}, "\n"), summary)
}

func TestSummarize_Empty(t *testing.T) {
	summary := triage.Summarize(entities.RiskAssessment{Priority: entities.PriorityLow, Urgency: 168}, entities.ScanResult{RiskLevel: entities.RiskLevelLow})

	assert.Contains(t, summary, "MTF Suspected: No")
	assert.Contains(t, summary, "Key Risk Factors: none identified")
	assert.True(t, strings.HasSuffix(summary, "Top Recommendations: none"))
}
