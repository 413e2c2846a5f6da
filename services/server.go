package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/krshsl/mockmate/backend/repository"
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	repo               *repository.GORMRepository
	evaluator          Evaluator
	authService        *AuthService
	authEndpoints      *AuthEndpoints
	interviewService   *InterviewService
	interviewEndpoints *InterviewEndpoints
	dashboardEndpoints *DashboardEndpoints
	liveEndpoints      *LiveEndpoints
}

// NewServer creates a new server instance
func NewServer(config *Config, repo *repository.GORMRepository) *Server {
	return &Server{
		config: config,
		repo:   repo,
	}
}

// SetEvaluator replaces the evaluator used for interview completion
func (s *Server) SetEvaluator(evaluator Evaluator) {
	s.evaluator = evaluator
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices(ctx context.Context) error {
	if s.evaluator == nil && s.config.AI.GeminiAPIKey != "" {
		evaluator, err := NewGeminiEvaluator(ctx, s.config.AI.GeminiAPIKey, s.config.AI.GeminiModel)
		if err != nil {
			return err
		}
		s.evaluator = evaluator
		slog.Info("Gemini evaluator initialized", "model", evaluator.model)
	}
	if s.evaluator == nil {
		slog.Warn("Gemini API key not configured, interview completion disabled")
	}

	if s.repo == nil {
		slog.Warn("Database not configured, running without API routes")
		return nil
	}

	if s.config.JWT.Secret == "" {
		slog.Warn("JWT secret not configured, running without API routes")
		return nil
	}

	s.authService = NewAuthService(s.repo, s.config.JWT.Secret, s.config.Server.IsProduction())
	s.authEndpoints = NewAuthEndpoints(s.authService)
	slog.Info("Authentication service initialized")

	s.interviewService = NewInterviewService(s.repo, s.evaluator)
	s.interviewEndpoints = NewInterviewEndpoints(s.interviewService)
	s.dashboardEndpoints = NewDashboardEndpoints(s.repo)
	s.liveEndpoints = NewLiveEndpoints(s.interviewService, s.config.WebSocket.AllowedOrigins)
	slog.Info("Interview services initialized")

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(SessionGate(s.config.Server.LoginPath))

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		if s.authService == nil {
			return
		}

		s.authEndpoints.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)
			s.interviewEndpoints.RegisterRoutes(r)
			s.dashboardEndpoints.RegisterRoutes(r)
			s.liveEndpoints.RegisterRoutes(r)
		})
	})

	if dir := s.config.Server.StaticDir; dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections against a comma-separated allow-list.
// An empty list denies every origin.
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.repo != nil {
		if err := s.repo.Ping(r.Context()); err != nil {
			slog.Error("Database ping failed", "error", err)
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status, "database": dbStatus})
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API v1", "version": "1.0.0"})
}
