package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/krshsl/mockmate/backend/models"
	"gorm.io/gorm"
)

func (r *GORMRepository) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		slog.Error("Failed to create interview", "error", err, "user_id", interview.UserID)
		return translate(err)
	}
	slog.Info("Interview created", "interview_id", interview.ID, "user_id", interview.UserID)
	return nil
}

// GetInterview returns the interview if it belongs to userID
func (r *GORMRepository) GetInterview(ctx context.Context, interviewID, userID string) (*models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", interviewID, userID).
		First(&interview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get interview", "error", err, "interview_id", interviewID, "user_id", userID)
		return nil, err
	}
	return &interview, nil
}

// GetInterviewsWithFeedback loads every interview of a user with its feedback, if any
func (r *GORMRepository) GetInterviewsWithFeedback(ctx context.Context, userID string) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Feedback").
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		slog.Error("Failed to get interviews", "error", err, "user_id", userID)
		return nil, err
	}
	return interviews, nil
}

// GetCompletedInterviews lists a user's completed interviews, newest first
func (r *GORMRepository) GetCompletedInterviews(ctx context.Context, userID string) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		slog.Error("Failed to get completed interviews", "error", err, "user_id", userID)
		return nil, err
	}
	return interviews, nil
}

// CompleteInterview marks the interview completed and stores its feedback in one transaction.
// ErrNotFound is returned when the interview does not exist for the user, ErrConflict when
// feedback was already stored for it.
func (r *GORMRepository) CompleteInterview(ctx context.Context, feedback *models.Feedback) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Interview{}).
			Where("id = ? AND user_id = ?", feedback.InterviewID, feedback.UserID).
			Update("is_completed", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(feedback).Error
	})
	if err != nil {
		err = translate(err)
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
			slog.Error("Failed to complete interview", "error", err, "interview_id", feedback.InterviewID, "user_id", feedback.UserID)
		}
		return err
	}

	slog.Info("Interview completed", "interview_id", feedback.InterviewID, "feedback_id", feedback.ID)
	return nil
}

// DeleteInterview removes an interview and its feedback. The ownership check runs inside
// the same transaction as the deletes.
func (r *GORMRepository) DeleteInterview(ctx context.Context, interviewID, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var interview models.Interview
		if err := tx.Select("id").
			Where("id = ? AND user_id = ?", interviewID, userID).
			First(&interview).Error; err != nil {
			return err
		}

		if err := tx.Where("interview_id = ?", interviewID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", interviewID).Delete(&models.Interview{}).Error
	})
	if err != nil {
		err = translate(err)
		if !errors.Is(err, ErrNotFound) {
			slog.Error("Failed to delete interview", "error", err, "interview_id", interviewID, "user_id", userID)
		}
		return err
	}

	slog.Info("Interview deleted", "interview_id", interviewID, "user_id", userID)
	return nil
}

// GetFeedback returns the feedback of an interview with the interview's name and role.
// An empty userID skips the ownership filter.
func (r *GORMRepository) GetFeedback(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	var feedback models.Feedback
	query := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Preload("Interview", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "role")
		})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.First(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get feedback", "error", err, "interview_id", interviewID, "user_id", userID)
		return nil, err
	}
	return &feedback, nil
}
