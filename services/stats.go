package services

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/krshsl/mockmate/backend/models"
	"github.com/krshsl/mockmate/backend/repository"
)

const (
	leaderboardSize   = 3
	recentInterviews  = 5
	scoresPerFeedback = 6
)

type SkillAverage struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type DashboardStats struct {
	TotalInterviews          int            `json:"totalInterviews"`
	CompletedInterviewsCount int            `json:"completedInterviewsCount"`
	AverageScore             int            `json:"averageScore"`
	SkillsData               []SkillAverage `json:"skillsData"`
}

type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Score int    `json:"score"`
}

type LeaderboardUser struct {
	Rank  int    `json:"rank"`
	Score *int   `json:"score"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Leaderboard struct {
	TopUsers    []LeaderboardEntry `json:"topUsers"`
	CurrentUser *LeaderboardUser   `json:"currentUser"`
}

type HRStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalInterviews     int64 `json:"totalInterviews"`
	CompletedInterviews int64 `json:"completedInterviews"`
}

type RecentInterview struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type HRDashboard struct {
	Stats            HRStats           `json:"stats"`
	RecentInterviews []RecentInterview `json:"recentInterviews"`
}

// roundHalfUp rounds .5 towards positive infinity
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// skillLabel turns a camelCase key into words: "problemSolving" -> "problem Solving"
func skillLabel(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// scoredFeedbacks returns the feedback of completed interviews that have one
func scoredFeedbacks(interviews []models.Interview) []*models.Feedback {
	var out []*models.Feedback
	for i := range interviews {
		if interviews[i].IsCompleted && interviews[i].Feedback != nil {
			out = append(out, interviews[i].Feedback)
		}
	}
	return out
}

// flatAverage is the mean over every individual score point, not the mean of
// per-interview averages. Both agree while each feedback has all six scores.
func flatAverage(feedbacks []*models.Feedback) int {
	if len(feedbacks) == 0 {
		return 0
	}
	total := 0
	for _, f := range feedbacks {
		total += f.Sum()
	}
	return roundHalfUp(float64(total) / float64(scoresPerFeedback*len(feedbacks)))
}

// BuildDashboardStats aggregates one user's interviews for the candidate dashboard
func BuildDashboardStats(interviews []models.Interview) DashboardStats {
	stats := DashboardStats{TotalInterviews: len(interviews)}
	for _, i := range interviews {
		if i.IsCompleted {
			stats.CompletedInterviewsCount++
		}
	}

	feedbacks := scoredFeedbacks(interviews)
	stats.AverageScore = flatAverage(feedbacks)

	stats.SkillsData = make([]SkillAverage, 0, len(models.SkillKeys))
	for idx, key := range models.SkillKeys {
		avg := 0
		if len(feedbacks) > 0 {
			sum := 0
			for _, f := range feedbacks {
				sum += f.Values()[idx]
			}
			avg = roundHalfUp(float64(sum) / float64(len(feedbacks)))
		}
		stats.SkillsData = append(stats.SkillsData, SkillAverage{Type: skillLabel(key), Value: avg})
	}
	return stats
}

// BuildLeaderboard ranks users by their flat average score. Users without any
// scored interview are left out. Equal scores are ordered by user id.
func BuildLeaderboard(users []models.User, current *Principal) Leaderboard {
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		feedbacks := scoredFeedbacks(u.Interviews)
		if len(feedbacks) == 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			ID:    u.ID,
			Name:  u.Name,
			Image: u.Image,
			Score: flatAverage(feedbacks),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})

	board := Leaderboard{TopUsers: entries[:min(leaderboardSize, len(entries))]}
	if current == nil {
		return board
	}

	board.CurrentUser = &LeaderboardUser{Name: current.Name, Image: current.Image}
	for idx := range entries {
		if entries[idx].ID == current.ID {
			score := entries[idx].Score
			board.CurrentUser.Rank = idx + 1
			board.CurrentUser.Score = &score
			break
		}
	}
	return board
}

// BuildHRDashboard shapes platform counts and recent completions for HR users
func BuildHRDashboard(counts *repository.PlatformCounts, recent []models.Interview) HRDashboard {
	dashboard := HRDashboard{
		Stats: HRStats{
			TotalUsers:          counts.TotalUsers,
			TotalInterviews:     counts.TotalInterviews,
			CompletedInterviews: counts.CompletedInterviews,
		},
		RecentInterviews: make([]RecentInterview, 0, len(recent)),
	}

	for _, i := range recent {
		owner := ""
		if i.User != nil {
			owner = i.User.Name
		}
		dashboard.RecentInterviews = append(dashboard.RecentInterviews, RecentInterview{
			ID:        i.ID,
			Name:      i.Name,
			User:      owner,
			CreatedAt: i.CreatedAt,
		})
	}
	return dashboard
}
