package triage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

const (
	summaryRiskFactors     = 5
	summaryRecommendations = 3
)

// Summarize renders an assessment as a short audit text. It only formats.
func Summarize(assessment entities.RiskAssessment, scan entities.ScanResult) string {
	var b strings.Builder

	b.WriteString("MTF Risk Assessment\n")
	fmt.Fprintf(&b, "Priority: %s (follow-up within %d hours)\n", strings.ToUpper(string(assessment.Priority)), assessment.Urgency)
	fmt.Fprintf(&b, "MTF Suspected: %s\n", yesNo(scan.MTFSuspected))
	fmt.Fprintf(&b, "Risk Level: %s\n", scan.RiskLevel)
	fmt.Fprintf(&b, "Risk Score: %s/100\n", formatNumber(scan.RiskScore))
	fmt.Fprintf(&b, "Confidence: %s%%\n", formatNumber(scan.Confidence))
	fmt.Fprintf(&b, "Specialist Referral: %s\n", yesNo(assessment.SpecialistReferral))

	factors := head(assessment.RiskFactors, summaryRiskFactors)
	if len(factors) == 0 {
		b.WriteString("Key Risk Factors: none identified\n")
	} else {
		fmt.Fprintf(&b, "Key Risk Factors: %s\n", strings.Join(factors, ", "))
	}

	b.WriteString("Top Recommendations:")
	recs := head(assessment.Recommendations, summaryRecommendations)
	if len(recs) == 0 {
		b.WriteString(" none")
	}
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, rec)
	}
	return b.String()
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
