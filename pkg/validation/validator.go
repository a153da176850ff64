package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// report fields by their JSON names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v against its `validate` tags. Failures are returned as a
// VALIDATION AppError with one FieldError per offending field.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apperrors.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return apperrors.NewValidationError("Validation failed", details...)
}

// fieldPath drops the root struct name from a namespace such as
// "AssessmentRequest.scanResult.riskScore".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return bound("at least", fe)
	case "max":
		return bound("at most", fe)
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

func bound(relation string, fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return "must be " + relation + " " + fe.Param() + " characters long"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "must contain " + relation + " " + fe.Param() + " items"
	}
	return "must be " + relation + " " + fe.Param()
}
