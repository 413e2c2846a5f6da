package websocket

import (
	"testing"

	"github.com/krshsl/mockmate/backend/models"
)

func TestTranscriptApply(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{name: "final user", event: Event{Type: EventTranscript, TranscriptType: TranscriptFinal, Role: "user", Transcript: "hello"}, want: true},
		{name: "final assistant", event: Event{Type: EventTranscript, TranscriptType: TranscriptFinal, Role: "assistant", Transcript: "hi"}, want: true},
		{name: "partial", event: Event{Type: EventTranscript, TranscriptType: "partial", Role: "user", Transcript: "hel"}},
		{name: "other type", event: Event{Type: "speech-update", Role: "user"}},
		{name: "unknown role", event: Event{Type: EventTranscript, TranscriptType: TranscriptFinal, Role: "system", Transcript: "x"}},
		{name: "blank", event: Event{Type: EventTranscript, TranscriptType: TranscriptFinal, Role: "user", Transcript: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Transcript
			if got := tr.Apply(tt.event); got != tt.want {
				t.Fatalf("Apply: want=%v got=%v", tt.want, got)
			}
			if wantLen := map[bool]int{true: 1, false: 0}[tt.want]; tr.Len() != wantLen {
				t.Fatalf("len: want=%d got=%d", wantLen, tr.Len())
			}
		})
	}
}

func TestTranscriptOrderAndCopy(t *testing.T) {
	var tr Transcript
	tr.Apply(Event{Type: EventTranscript, TranscriptType: TranscriptFinal, Role: "assistant", Transcript: "Question one"})
	tr.Apply(Event{Type: EventTranscript, TranscriptType: "partial", Role: "user", Transcript: "Ans"})
	tr.Apply(Event{Type: EventTranscript, TranscriptType: TranscriptFinal, Role: "user", Transcript: " Answer one "})

	got := tr.Messages()
	want := []models.SavedMessage{
		{Role: models.SpeakerAssistant, Content: "Question one"},
		{Role: models.SpeakerUser, Content: "Answer one"},
	}
	if len(got) != len(want) {
		t.Fatalf("messages: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message[%d]: want=%+v got=%+v", i, want[i], got[i])
		}
	}

	got[0].Content = "changed"
	if tr.Messages()[0].Content != "Question one" {
		t.Fatalf("Messages exposed internal slice")
	}
}
