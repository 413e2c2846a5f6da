package services

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/krshsl/mockmate/backend/repository"
)

var (
	ErrUnauthorized         = errors.New("not authorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
	ErrConversationTooShort = errors.New("conversation too short to evaluate")
	ErrEvaluationParse      = errors.New("failed to parse evaluation response")
	ErrEvaluationInvalid    = errors.New("evaluation response did not match schema")
	ErrEvaluatorUnavailable = errors.New("evaluator not configured")
)

// ValidationError carries field-level messages keyed by the JSON field path
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Issues returns the field errors in a stable order
func (e *ValidationError) Issues() []FieldIssue {
	issues := make([]FieldIssue, 0, len(e.Fields))
	for field, msg := range e.Fields {
		issues = append(issues, FieldIssue{Field: field, Message: msg})
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues
}

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// APIError is an error with the HTTP status and message it should surface as
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// completionError maps an interview completion failure onto its response
func completionError(err error) *APIError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Invalid request body", Err: err}
	case errors.Is(err, ErrConversationTooShort):
		return &APIError{Status: http.StatusBadRequest, Code: "conversation_too_short", Message: "Interview conversation is too short or invalid.", Err: err}
	case errors.Is(err, ErrEvaluationParse):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: "evaluation_parse_failed", Message: "Failed to parse AI model response.", Err: err}
	case errors.Is(err, ErrEvaluationInvalid):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: "evaluation_invalid", Message: "AI model response did not match the expected format.", Err: err}
	case errors.Is(err, ErrUnauthorized), errors.Is(err, repository.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "Interview not found or user not authorized.", Err: err}
	case errors.Is(err, ErrEvaluatorUnavailable):
		return &APIError{Status: http.StatusServiceUnavailable, Code: "evaluator_unavailable", Message: "Interview evaluation is not available right now.", Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Status: http.StatusConflict, Code: "already_completed", Message: "Feedback already exists for this interview.", Err: err}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal", Message: "An internal server error occurred.", Err: err}
	}
}
