package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/krshsl/mockmate/backend/models"
	"github.com/krshsl/mockmate/backend/repository"
)

const testSecret = "test-secret"

const validEvaluation = `{
  "feedbackObject": "Clear communication, shaky on concurrency.",
  "ProblemSolving": 70,
  "SystemDesign": 60,
  "CommunicationSkills": 80,
  "TechnicalAccuracy": 65,
  "BehavioralResponses": 75,
  "TimeManagement": 90,
  "weakTopics": [
    {"topic": "Goroutine leaks", "resourceType": "article", "resourceTitle": "Leaks", "resourceUrl": "https://go.dev/blog/pipelines"}
  ]
}`

type fakeEvaluator struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.response, f.err
}

func newTestRepo(t *testing.T) *repository.GORMRepository {
	t.Helper()

	repo, err := repository.Open(context.Background(), repository.Options{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(repo.Close)

	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func seedUser(t *testing.T, repo *repository.GORMRepository, email, role string) Principal {
	t.Helper()
	user := &models.User{Name: strings.Split(email, "@")[0], Email: email, Password: "x", Role: role}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return principalFromUser(user)
}

func seedInterview(t *testing.T, repo *repository.GORMRepository, userID string) *models.Interview {
	t.Helper()
	interview := &models.Interview{UserID: userID, Name: "Backend", Role: "Engineer", NoOfQuestions: 3}
	if err := repo.CreateInterview(context.Background(), interview); err != nil {
		t.Fatalf("create interview: %v", err)
	}
	return interview
}

func testConversation() []models.SavedMessage {
	return []models.SavedMessage{
		{Role: models.SpeakerAssistant, Content: "How do you stop a goroutine?"},
		{Role: models.SpeakerUser, Content: "I cancel its context."},
	}
}

type testServer struct {
	server    *Server
	handler   http.Handler
	repo      *repository.GORMRepository
	evaluator *fakeEvaluator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	config := &Config{
		Server:    ServerConfig{Environment: "development", LoginPath: "/login"},
		JWT:       JWTConfig{Secret: testSecret},
		WebSocket: WebSocketConfig{AllowedOrigins: "http://app.test"},
	}
	repo := newTestRepo(t)
	evaluator := &fakeEvaluator{response: validEvaluation}

	server := NewServer(config, repo)
	server.SetEvaluator(evaluator)
	if err := server.InitializeServices(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	return &testServer{
		server:    server,
		handler:   server.SetupRoutes(),
		repo:      repo,
		evaluator: evaluator,
	}
}

// sessionCookie signs in p and returns the cookie carrying its session token
func (ts *testServer) sessionCookie(t *testing.T, p Principal) *http.Cookie {
	t.Helper()
	user, err := ts.repo.GetUserByID(context.Background(), p.ID)
	if err != nil || user == nil {
		t.Fatalf("load user: %v", err)
	}
	token, err := ts.server.authService.generateAccessToken(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: token}
}
