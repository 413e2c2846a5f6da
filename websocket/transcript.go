package websocket

import (
	"strings"

	"github.com/krshsl/mockmate/backend/models"
)

const (
	EventTranscript = "transcript"
	EventHangUp     = "hang-up"

	TranscriptFinal = "final"
)

// Event is a message forwarded by the client from the voice AI call
type Event struct {
	Type           string `json:"type"`
	TranscriptType string `json:"transcriptType,omitempty"`
	Role           string `json:"role,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
}

// Transcript accumulates the final utterances of one call in arrival order
type Transcript struct {
	messages []models.SavedMessage
}

// Apply records e if it is a final transcript from a known speaker and reports
// whether it was recorded.
func (t *Transcript) Apply(e Event) bool {
	if e.Type != EventTranscript || e.TranscriptType != TranscriptFinal {
		return false
	}
	if e.Role != models.SpeakerUser && e.Role != models.SpeakerAssistant {
		return false
	}
	content := strings.TrimSpace(e.Transcript)
	if content == "" {
		return false
	}

	t.messages = append(t.messages, models.SavedMessage{Role: e.Role, Content: content})
	return true
}

// Messages returns a copy of the recorded conversation
func (t *Transcript) Messages() []models.SavedMessage {
	out := make([]models.SavedMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}
