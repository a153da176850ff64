package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGoldenCases reads and parses a golden case set from a JSON file.
func LoadGoldenCases(path string) ([]GoldenCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden cases file: %w", err)
	}

	var cases []GoldenCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse golden cases: %w", err)
	}

	return cases, nil
}

// ValidateGoldenCases checks that all golden cases have required fields and valid values.
func ValidateGoldenCases(cases []GoldenCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if c.ExpectedPriority.Rank() < 0 {
			return fmt.Errorf("case %q: invalid expected priority %q", c.ID, c.ExpectedPriority)
		}
		if c.PatientContext.Age < 0 || c.PatientContext.Age > 150 {
			return fmt.Errorf("case %q: age %v out of range (must be 0-150)", c.ID, c.PatientContext.Age)
		}
		if c.ScanResult.RiskScore < 0 || c.ScanResult.RiskScore > 100 {
			return fmt.Errorf("case %q: risk score %v out of range (must be 0-100)", c.ID, c.ScanResult.RiskScore)
		}
		if c.ExpectedUrgency != nil && *c.ExpectedUrgency < 1 {
			return fmt.Errorf("case %q: expected urgency must be at least 1 hour", c.ID)
		}
	}

	return nil
}
