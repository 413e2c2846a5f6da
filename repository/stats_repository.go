package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/krshsl/mockmate/backend/models"
	"gorm.io/gorm"
)

// PlatformCounts are the global totals shown on the HR dashboard
type PlatformCounts struct {
	TotalUsers          int64
	TotalInterviews     int64
	CompletedInterviews int64
}

// GetPlatformCounts counts users, interviews and completed interviews across all users
func (r *GORMRepository) GetPlatformCounts(ctx context.Context) (*PlatformCounts, error) {
	var counts PlatformCounts

	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&counts.TotalUsers).Error; err != nil {
		slog.Error("Failed to count users", "error", err)
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Count(&counts.TotalInterviews).Error; err != nil {
		slog.Error("Failed to count interviews", "error", err)
		return nil, fmt.Errorf("failed to count interviews: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("is_completed = ?", true).
		Count(&counts.CompletedInterviews).Error; err != nil {
		slog.Error("Failed to count completed interviews", "error", err)
		return nil, fmt.Errorf("failed to count completed interviews: %w", err)
	}

	return &counts, nil
}

// GetRecentCompletedInterviews returns the latest completed interviews with their owners' names
func (r *GORMRepository) GetRecentCompletedInterviews(ctx context.Context, limit int) ([]models.Interview, error) {
	var interviews []models.Interview

	if err := r.db.WithContext(ctx).
		Where("is_completed = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Find(&interviews).Error; err != nil {
		slog.Error("Failed to get recent interviews", "error", err, "limit", limit)
		return nil, fmt.Errorf("failed to get recent interviews: %w", err)
	}

	return interviews, nil
}

// GetUsersWithCompletedInterviews loads every user with their completed interviews and feedback
func (r *GORMRepository) GetUsersWithCompletedInterviews(ctx context.Context) ([]models.User, error) {
	var users []models.User

	if err := r.db.WithContext(ctx).
		Preload("Interviews", "is_completed = ?", true).
		Preload("Interviews.Feedback").
		Find(&users).Error; err != nil {
		slog.Error("Failed to get users with interviews", "error", err)
		return nil, fmt.Errorf("failed to get users with interviews: %w", err)
	}

	return users, nil
}
