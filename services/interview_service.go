package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/krshsl/mockmate/backend/models"
	"github.com/krshsl/mockmate/backend/repository"
	"gorm.io/datatypes"
)

var errCreateInterview = errors.New("failed to create interview")

type InterviewService struct {
	repo      *repository.GORMRepository
	evaluator Evaluator
}

func NewInterviewService(repo *repository.GORMRepository, evaluator Evaluator) *InterviewService {
	return &InterviewService{
		repo:      repo,
		evaluator: evaluator,
	}
}

// CreateInterviewInput is the interview scheduling form. Tech stack and question
// count arrive as strings and are normalized by CreateInterview.
type CreateInterviewInput struct {
	Name              string `json:"name" validate:"required"`
	Type              string `json:"type" validate:"required"`
	Role              string `json:"role" validate:"required"`
	TechStack         string `json:"techStack" validate:"required"`
	Experience        string `json:"experience" validate:"required"`
	DifficultyLevel   string `json:"difficultyLevel" validate:"required"`
	NumberOfQuestions string `json:"numberOfQuestions" validate:"required"`
}

type CompleteInterviewInput struct {
	ID            string                `json:"id" validate:"required"`
	UserID        string                `json:"userid" validate:"required"`
	Conversation  []models.SavedMessage `json:"conversation" validate:"required,dive"`
	CodingProblem string                `json:"codingProblem,omitempty"`
	SubmittedCode string                `json:"submittedCode,omitempty"`
}

// SplitTechStack splits a comma-separated list and trims every entry
func SplitTechStack(raw string) []string {
	parts := strings.Split(raw, ",")
	stack := make([]string, 0, len(parts))
	for _, p := range parts {
		stack = append(stack, strings.TrimSpace(p))
	}
	return stack
}

// CreateInterview schedules a new, not yet completed interview for the principal
func (s *InterviewService) CreateInterview(ctx context.Context, principal Principal, in CreateInterviewInput) (*models.Interview, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	questions, err := strconv.Atoi(strings.TrimSpace(in.NumberOfQuestions))
	if err != nil {
		return nil, newValidationError("numberOfQuestions", "must be a whole number")
	}

	interview := &models.Interview{
		UserID:          principal.ID,
		Name:            in.Name,
		Type:            in.Type,
		Role:            in.Role,
		TechStack:       SplitTechStack(in.TechStack),
		Experience:      in.Experience,
		DifficultyLevel: in.DifficultyLevel,
		NoOfQuestions:   questions,
		IsCompleted:     false,
	}

	if err := s.repo.CreateInterview(ctx, interview); err != nil {
		return nil, fmt.Errorf("%w: %v", errCreateInterview, err)
	}
	return interview, nil
}

// CompleteInterview evaluates the conversation and stores the feedback. Nothing is
// persisted unless the evaluator returns a valid scored result.
func (s *InterviewService) CompleteInterview(ctx context.Context, principal Principal, in CompleteInterviewInput) (*models.Feedback, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.UserID != principal.ID {
		slog.Warn("Completion requested for another user", "user_id", principal.ID, "interview_id", in.ID)
		return nil, ErrUnauthorized
	}
	if len(in.Conversation) == 0 {
		return nil, ErrConversationTooShort
	}
	if s.evaluator == nil {
		return nil, ErrEvaluatorUnavailable
	}

	prompt := BuildEvaluationPrompt(BuildTranscriptText(in.Conversation), in.CodingProblem, in.SubmittedCode)
	raw, err := s.evaluator.Evaluate(ctx, prompt)
	if err != nil {
		slog.Error("Failed to evaluate interview", "error", err, "interview_id", in.ID)
		return nil, err
	}

	evaluation, err := ParseEvaluation(raw)
	if err != nil {
		slog.Warn("Rejected evaluation output", "error", err, "interview_id", in.ID)
		return nil, err
	}
	if evaluation.Verdict == VerdictTooShort {
		return nil, ErrConversationTooShort
	}

	feedback := &models.Feedback{
		InterviewID: in.ID,
		UserID:      principal.ID,
		ScoreSet:    evaluation.Scores,
		FeedBack: datatypes.NewJSONType(models.FeedbackReport{
			Summary:    evaluation.Summary,
			Transcript: in.Conversation,
			WeakTopics: evaluation.WeakTopics,
		}),
	}

	if err := s.repo.CompleteInterview(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *InterviewService) GetInterview(ctx context.Context, principal Principal, interviewID string) (*models.Interview, error) {
	interview, err := s.repo.GetInterview(ctx, interviewID, principal.ID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, repository.ErrNotFound
	}
	return interview, nil
}

// GetFeedback returns an interview's feedback. HR users may read any interview's.
func (s *InterviewService) GetFeedback(ctx context.Context, principal Principal, interviewID string) (*models.Feedback, error) {
	ownerID := principal.ID
	if principal.IsHR() {
		ownerID = ""
	}

	feedback, err := s.repo.GetFeedback(ctx, interviewID, ownerID)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		return nil, repository.ErrNotFound
	}
	return feedback, nil
}

func (s *InterviewService) ListCompleted(ctx context.Context, principal Principal) ([]models.Interview, error) {
	return s.repo.GetCompletedInterviews(ctx, principal.ID)
}

func (s *InterviewService) DeleteInterview(ctx context.Context, principal Principal, interviewID string) error {
	return s.repo.DeleteInterview(ctx, interviewID, principal.ID)
}
