package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/krshsl/mockmate/backend/models"
	"github.com/krshsl/mockmate/backend/repository"
	ws "github.com/krshsl/mockmate/backend/websocket"
)

// LiveEndpoints captures the transcript of a running voice interview over a websocket
type LiveEndpoints struct {
	interviewService *InterviewService
	upgrader         websocket.Upgrader
}

func NewLiveEndpoints(interviewService *InterviewService, allowedOrigins string) *LiveEndpoints {
	return &LiveEndpoints{
		interviewService: interviewService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, allowedOrigins)
			},
		},
	}
}

// RegisterRoutes expects to be mounted behind the auth middleware
func (e *LiveEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/interviews/{id}/live", e.LiveHandler)
}

func (e *LiveEndpoints) LiveHandler(w http.ResponseWriter, r *http.Request) {
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
	if interview.IsCompleted {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Interview already completed"})
		return
	}

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err, "interview_id", interviewID)
		return
	}

	slog.Info("Live session started", "interview_id", interviewID, "user_id", principal.ID)

	session := ws.NewSession(conn, interviewID, principal.ID, e.hangUp(principal, interviewID))
	go session.WritePump()
	session.ReadPump(r.Context())
}

func (e *LiveEndpoints) hangUp(principal Principal, interviewID string) ws.HangUpFunc {
	return func(ctx context.Context, conversation []models.SavedMessage) ws.Reply {
		_, err := e.interviewService.CompleteInterview(ctx, principal, CompleteInterviewInput{
			ID:           interviewID,
			UserID:       principal.ID,
			Conversation: conversation,
		})
		if err != nil {
			apiErr := completionError(err)
			if apiErr.Status == http.StatusInternalServerError {
				slog.Error("Error completing live interview", "error", err, "interview_id", interviewID)
			}
			return ws.Reply{Type: "error", Message: apiErr.Message, Status: apiErr.Status}
		}
		return ws.Reply{Type: "completed", InterviewID: interviewID}
	}
}
