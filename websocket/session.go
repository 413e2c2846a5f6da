package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/krshsl/mockmate/backend/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
)

// Reply is sent to the client once the call has been handled
type Reply struct {
	Type        string `json:"type"`
	InterviewID string `json:"interviewId,omitempty"`
	Message     string `json:"message,omitempty"`
	Status      int    `json:"status,omitempty"`
}

// HangUpFunc completes the interview with the captured conversation
type HangUpFunc func(ctx context.Context, conversation []models.SavedMessage) Reply

// Session is one live interview connection. Its transcript is never shared
// with other connections.
type Session struct {
	Conn        *websocket.Conn
	Send        chan []byte
	InterviewID string
	UserID      string
	transcript  Transcript
	onHangUp    HangUpFunc
}

func NewSession(conn *websocket.Conn, interviewID, userID string, onHangUp HangUpFunc) *Session {
	return &Session{
		Conn:        conn,
		Send:        make(chan []byte, 16),
		InterviewID: interviewID,
		UserID:      userID,
		onHangUp:    onHangUp,
	}
}

// ReadPump consumes client events until hang-up or disconnect. It is the only
// sender on Send and closes it when done.
func (s *Session) ReadPump(ctx context.Context) {
	defer close(s.Send)

	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err, "interview_id", s.InterviewID)
			}
			slog.Info("Live session closed before hang-up", "interview_id", s.InterviewID, "messages", s.transcript.Len())
			return
		}

		var event Event
		if err := json.Unmarshal(messageBytes, &event); err != nil {
			slog.Warn("Failed to unmarshal event", "error", err, "interview_id", s.InterviewID)
			continue
		}

		switch event.Type {
		case EventTranscript:
			s.transcript.Apply(event)
		case EventHangUp:
			slog.Info("Call ended", "interview_id", s.InterviewID, "messages", s.transcript.Len())
			s.send(s.onHangUp(ctx, s.transcript.Messages()))
			return
		}
	}
}

func (s *Session) send(reply Reply) {
	payload, err := json.Marshal(reply)
	if err != nil {
		slog.Error("Failed to marshal reply", "error", err, "interview_id", s.InterviewID)
		return
	}
	s.Send <- payload
}

// WritePump delivers queued replies and keeps the connection alive with pings.
// It closes the connection once Send is closed.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
