package models

const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// SavedMessage is one utterance of a live interview transcript
type SavedMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Label returns the speaker name used when the transcript is rendered as text
func (m SavedMessage) Label() string {
	if m.Role == SpeakerUser {
		return "User"
	}
	return "Assistant"
}
