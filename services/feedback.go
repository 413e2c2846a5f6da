package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/krshsl/mockmate/backend/models"
)

// Verdict tells whether the evaluator produced scores or declined the conversation
type Verdict int

const (
	VerdictEvaluated Verdict = iota
	VerdictTooShort
)

// Evaluation is the parsed evaluator output. Scores, Summary and WeakTopics are
// only set when Verdict is VerdictEvaluated.
type Evaluation struct {
	Verdict    Verdict
	Scores     models.ScoreSet
	Summary    string
	WeakTopics []models.WeakTopic
}

// evaluationPayload is the JSON object the model is asked to return
type evaluationPayload struct {
	FeedbackObject      string             `json:"feedbackObject" validate:"required"`
	ProblemSolving      int                `json:"ProblemSolving" validate:"min=1,max=100"`
	SystemDesign        int                `json:"SystemDesign" validate:"min=1,max=100"`
	CommunicationSkills int                `json:"CommunicationSkills" validate:"min=1,max=100"`
	TechnicalAccuracy   int                `json:"TechnicalAccuracy" validate:"min=1,max=100"`
	BehavioralResponses int                `json:"BehavioralResponses" validate:"min=1,max=100"`
	TimeManagement      int                `json:"TimeManagement" validate:"min=1,max=100"`
	WeakTopics          []models.WeakTopic `json:"weakTopics" validate:"dive"`
}

// BuildTranscriptText renders one "User: ..." or "Assistant: ..." line per message
func BuildTranscriptText(conversation []models.SavedMessage) string {
	lines := make([]string, 0, len(conversation))
	for _, msg := range conversation {
		lines = append(lines, msg.Label()+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

const evaluationInstructions = `If the conversation is too short, lacks meaningful questions return exactly this:
{}
If the conversation is valid, analyze the transcript to identify the 2-3 most important technical topics the candidate struggled with. For each topic, find one high-quality learning resource (a video, article, or official documentation). Then, return a single valid JSON object with the following structure:
{
    "feedbackObject": "A concise summary (350-400 characters) highlighting performance and areas of improvement.",
    "ProblemSolving": <1-100>,
    "SystemDesign": <1-100>,
    "CommunicationSkills": <1-100>,
    "TechnicalAccuracy": <1-100>,
    "BehavioralResponses": <1-100>,
    "TimeManagement": <1-100>,
    "weakTopics": [
      {
        "topic": "The specific technical topic",
        "resourceType": "video" | "article" | "docs",
        "resourceTitle": "Title of the resource",
        "resourceUrl": "A valid URL to the resource"
      }
    ]
}
Rate BehavioralResponses on professionalism and clarity, not personality.

STRICT RULES:
Don't start with json in the results
Do NOT include any markdown, triple backticks, or code blocks
Do NOT include any text, labels, commentary, or variable names before or after the JSON
Do NOT escape characters (e.g., no \n or \")
Do NOT wrap the output in quotes
Return only the raw JSON object as shown above and nothing else
If the interview is invalid, return exactly: {}`

// BuildEvaluationPrompt embeds the transcript verbatim in the fixed evaluation
// instructions. The coding problem and submitted code are appended when set.
func BuildEvaluationPrompt(transcript, codingProblem, submittedCode string) string {
	var b strings.Builder
	b.WriteString("Evaluate the user's performance in the interview.\n")
	b.WriteString(transcript)
	b.WriteString("\n")

	if strings.TrimSpace(codingProblem) != "" {
		b.WriteString("\nThe candidate was given this coding problem:\n")
		b.WriteString(codingProblem)
		b.WriteString("\n")
	}
	if strings.TrimSpace(submittedCode) != "" {
		b.WriteString("\nThe candidate submitted this code:\n")
		b.WriteString(submittedCode)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(evaluationInstructions)
	b.WriteString("\n")
	return b.String()
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\n?```$")

// stripCodeFence removes a markdown code fence wrapping the whole response
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	return strings.TrimSpace(text)
}

// ParseEvaluation turns raw model output into an Evaluation. An empty JSON
// object means the model judged the conversation too short.
func ParseEvaluation(raw string) (*Evaluation, error) {
	text := stripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationParse, err)
	}
	if len(fields) == 0 {
		return &Evaluation{Verdict: VerdictTooShort}, nil
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationInvalid, err)
	}
	if err := validateStruct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationInvalid, err)
	}

	weakTopics := payload.WeakTopics
	if weakTopics == nil {
		weakTopics = []models.WeakTopic{}
	}

	return &Evaluation{
		Verdict: VerdictEvaluated,
		Scores: models.ScoreSet{
			ProblemSolving:      payload.ProblemSolving,
			SystemDesign:        payload.SystemDesign,
			CommunicationSkills: payload.CommunicationSkills,
			TechnicalAccuracy:   payload.TechnicalAccuracy,
			BehavioralResponses: payload.BehavioralResponses,
			TimeManagement:      payload.TimeManagement,
		},
		Summary:    payload.FeedbackObject,
		WeakTopics: weakTopics,
	}, nil
}
