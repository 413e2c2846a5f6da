package services

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krshsl/mockmate/backend/repository"
)

type DashboardEndpoints struct {
	repo *repository.GORMRepository
}

func NewDashboardEndpoints(repo *repository.GORMRepository) *DashboardEndpoints {
	return &DashboardEndpoints{
		repo: repo,
	}
}

// RegisterRoutes expects to be mounted behind the auth middleware
func (e *DashboardEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", e.DashboardHandler)
		r.Get("/leaderboard", e.LeaderboardHandler)
		r.With(RequireHR).Get("/hr", e.HRDashboardHandler)
	})
}

// RequireHR rejects principals without the HR role
func RequireHR(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok || !principal.IsHR() {
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "Forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (e *DashboardEndpoints) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	interviews, err := e.repo.GetInterviewsWithFeedback(r.Context(), principal.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load dashboard"})
		return
	}

	writeJSON(w, http.StatusOK, BuildDashboardStats(interviews))
}

func (e *DashboardEndpoints) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())

	users, err := e.repo.GetUsersWithCompletedInterviews(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load leaderboard"})
		return
	}

	var current *Principal
	if ok {
		current = &principal
	}
	writeJSON(w, http.StatusOK, BuildLeaderboard(users, current))
}

func (e *DashboardEndpoints) HRDashboardHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := e.repo.GetPlatformCounts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load HR dashboard"})
		return
	}

	recent, err := e.repo.GetRecentCompletedInterviews(r.Context(), recentInterviews)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load HR dashboard"})
		return
	}

	slog.Info("HR dashboard served", "total_users", counts.TotalUsers)
	writeJSON(w, http.StatusOK, BuildHRDashboard(counts, recent))
}
