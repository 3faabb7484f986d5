package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/courtloop/challenge-engine/internal/challenge"
)

// APIError is the structured error envelope every failure response carries.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (e APIError) Error() string {
	return e.Message
}

// Error types. Validation and unknown-type errors are caller mistakes;
// storage and internal errors are ours.
const (
	ErrTypeValidation  = "validation_error"
	ErrTypeInvalidWeek = "invalid_week"
	ErrTypeUnknownType = "unknown_challenge_type"
	ErrTypeNotFound    = "not_found"
	ErrTypeStorage     = "storage_error"
	ErrTypeInternal    = "internal_error"
)

func newAPIError(r *http.Request, errType, message string) APIError {
	return APIError{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// classifyEvaluationError maps evaluator errors onto the envelope taxonomy.
// Structural errors are the caller's problem (bad result payload or a
// descriptor referencing an unregistered type), never an internal fault.
func classifyEvaluationError(r *http.Request, err error) (int, APIError) {
	var structural *challenge.StructuralError
	if errors.As(err, &structural) {
		apiErr := newAPIError(r, ErrTypeValidation, structural.Error())
		if structural.MissingField != "" {
			apiErr.Context = map[string]any{"missing_field": structural.MissingField}
		} else {
			apiErr.Type = ErrTypeUnknownType
			apiErr.Context = map[string]any{"challenge_type": string(structural.UnknownType)}
		}
		return http.StatusBadRequest, apiErr
	}
	return http.StatusInternalServerError, newAPIError(r, ErrTypeInternal, err.Error())
}
