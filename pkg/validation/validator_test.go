package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
	"github.com/zatekoja/mtf-triage/backend/pkg/validation"
)

type request struct {
	ScanResult     entities.ScanResult     `json:"scanResult"`
	PatientContext entities.PatientContext `json:"patientContext"`
}

func validRequest() request {
	return request{
		ScanResult:     entities.ScanResult{RiskScore: 60, RiskLevel: entities.RiskLevelHigh, Confidence: 90},
		PatientContext: entities.PatientContext{Age: 70, Gender: "female"},
	}
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, validation.Struct(validRequest()))
}

func TestStruct_FieldDetails(t *testing.T) {
	req := validRequest()
	req.ScanResult.RiskScore = 140
	req.ScanResult.RiskLevel = "extreme"
	req.PatientContext.Age = -3
	req.PatientContext.Gender = ""

	err := validation.Struct(req)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.ElementsMatch(t, []apperrors.FieldError{
		{Field: "scanResult.riskScore", Message: "must be less than or equal to 100"},
		{Field: "scanResult.riskLevel", Message: "must be one of: low medium high critical"},
		{Field: "patientContext.age", Message: "must be greater than or equal to 0"},
		{Field: "patientContext.gender", Message: "is required"},
	}, appErr.Details)
}

func TestStruct_NestedFractures(t *testing.T) {
	req := validRequest()
	req.ScanResult.KeyFindings.Fractures = []entities.Fracture{{Location: "hip", Severity: "catastrophic"}}

	err := validation.Struct(req)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "scanResult.keyFindings.fractures[0].severity", appErr.Details[0].Field)
}

func TestStruct_NonStruct(t *testing.T) {
	err := validation.Struct(42)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
