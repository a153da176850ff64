package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
)

// maxBodyBytes bounds request bodies. Ten reports at the largest accepted
// report size fit comfortably.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                 `json:"error"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps an error onto a status code. Only validation
// and not-found messages reach the client; everything else is logged.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch status := appErr.Type.HTTPStatus(); status {
		case http.StatusBadRequest, http.StatusNotFound:
			respondWithJSON(w, status, errorResponse{Error: appErr.Message, Details: appErr.Details})
			return
		}
	}

	observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a JSON body into dst, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			respondWithAppError(w, r, apperrors.NewValidationError("Validation failed", apperrors.FieldError{
				Field:   typeErr.Field,
				Message: "must be " + jsonTypeName(typeErr.Type),
			}))
			return false
		}
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// jsonTypeName describes t the way a JSON client would name it
func jsonTypeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a valid value"
}
