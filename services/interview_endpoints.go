package services

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krshsl/mockmate/backend/repository"
)

type InterviewEndpoints struct {
	interviewService *InterviewService
}

func NewInterviewEndpoints(interviewService *InterviewService) *InterviewEndpoints {
	return &InterviewEndpoints{
		interviewService: interviewService,
	}
}

// RegisterRoutes expects to be mounted behind the auth middleware
func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/interviews", e.CreateInterviewHandler)
	r.Get("/interviews", e.ListInterviewsHandler)
	r.Get("/interviews/{id}", e.GetInterviewHandler)
	r.Delete("/interviews/{id}", e.DeleteInterviewHandler)
	r.Get("/interviews/{id}/feedback", e.GetFeedbackHandler)
	r.Post("/interview/complete", e.CompleteInterviewHandler)
}

func (e *InterviewEndpoints) CreateInterviewHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req CreateInterviewInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid request body"})
		return
	}

	interview, err := e.interviewService.CreateInterview(r.Context(), principal, req)
	if err != nil {
		if writeValidationErrors(w, err) {
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to create interview."})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "interview": interview})
}

// ListInterviewsHandler lists the principal's completed interviews, newest first
func (e *InterviewEndpoints) ListInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	interviews, err := e.interviewService.ListCompleted(r.Context(), principal)
	if err != nil {
		slog.Error("Failed to list interviews", "error", err, "user_id", principal.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load interviews"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interviews": interviews})
}

func (e *InterviewEndpoints) GetInterviewHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	interviewID := chi.URLParam(r, "id")

	interview, err := e.interviewService.GetInterview(r.Context(), principal, interviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Interview not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load interview"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}

func (e *InterviewEndpoints) GetFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	interviewID := chi.URLParam(r, "id")

	feedback, err := e.interviewService.GetFeedback(r.Context(), principal, interviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Feedback not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load feedback"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"feedback": feedback})
}

func (e *InterviewEndpoints) DeleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	interviewID := chi.URLParam(r, "id")

	if err := e.interviewService.DeleteInterview(r.Context(), principal, interviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Interview not found or user not authorized."})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Could not delete the interview. It may have already been deleted."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": "Interview deleted successfully."})
}

func (e *InterviewEndpoints) CompleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req CompleteInterviewInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid request body",
			"error":   []FieldIssue{{Field: "body", Message: "must be a JSON object"}},
		})
		return
	}

	feedback, err := e.interviewService.CompleteInterview(r.Context(), principal, req)
	if err != nil {
		writeCompletionError(w, err, req.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      http.StatusOK,
		"interviewId": feedback.InterviewID,
		"message":     "Interview completed and feedback saved.",
	})
}

func writeCompletionError(w http.ResponseWriter, err error, interviewID string) {
	apiErr := completionError(err)
	if apiErr.Status == http.StatusInternalServerError {
		slog.Error("Error completing interview", "error", err, "interview_id", interviewID)
	}

	body := map[string]any{"message": apiErr.Message}
	var verr *ValidationError
	if errors.As(err, &verr) {
		body["error"] = verr.Issues()
	}
	writeJSON(w, apiErr.Status, body)
}
