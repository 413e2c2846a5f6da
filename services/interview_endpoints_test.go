package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krshsl/mockmate/backend/models"
)

func (ts *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestCompleteInterviewEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		evalErr     error
		body        func(interviewID, userID string) any
		wantStatus  int
		wantMessage string
	}{
		{
			name:     "success",
			response: validEvaluation,
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": testConversation()}
			},
			wantStatus:  http.StatusOK,
			wantMessage: "Interview completed and feedback saved.",
		},
		{
			name:        "malformed body",
			body:        func(id, uid string) any { return "{not json" },
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name: "invalid role",
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": []map[string]string{{"role": "system", "content": "x"}}}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name:     "too short",
			response: "{}",
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": testConversation()}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Interview conversation is too short or invalid.",
		},
		{
			name: "empty conversation",
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": []any{}}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Interview conversation is too short or invalid.",
		},
		{
			name:     "unparseable model output",
			response: "no json here",
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": testConversation()}
			},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Failed to parse AI model response.",
		},
		{
			name:     "model output out of range",
			response: `{"feedbackObject":"x","ProblemSolving":0}`,
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": testConversation()}
			},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "AI model response did not match the expected format.",
		},
		{
			name:     "other user's id in body",
			response: validEvaluation,
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": "intruder", "conversation": testConversation()}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Interview not found or user not authorized.",
		},
		{
			name:     "evaluator error",
			evalErr:  errors.New("upstream down"),
			response: "",
			body: func(id, uid string) any {
				return map[string]any{"id": id, "userid": uid, "conversation": testConversation()}
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An internal server error occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.evaluator.response = tt.response
			ts.evaluator.err = tt.evalErr
			user := seedUser(t, ts.repo, "c@example.com", models.RoleCandidate)
			interview := seedInterview(t, ts.repo, user.ID)

			rec := ts.do(t, http.MethodPost, "/api/v1/interview/complete", tt.body(interview.ID, user.ID), ts.sessionCookie(t, user))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status: want=%d got=%d body=%s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["message"] != tt.wantMessage {
				t.Fatalf("message: want=%q got=%v", tt.wantMessage, body["message"])
			}
			if tt.wantStatus == http.StatusOK && body["interviewId"] != interview.ID {
				t.Fatalf("interviewId: want=%s got=%v", interview.ID, body["interviewId"])
			}
		})
	}
}

func TestCompleteInterviewEndpointConflict(t *testing.T) {
	ts := newTestServer(t)
	user := seedUser(t, ts.repo, "c@example.com", models.RoleCandidate)
	interview := seedInterview(t, ts.repo, user.ID)
	cookie := ts.sessionCookie(t, user)
	body := map[string]any{"id": interview.ID, "userid": user.ID, "conversation": testConversation()}

	if rec := ts.do(t, http.MethodPost, "/api/v1/interview/complete", body, cookie); rec.Code != http.StatusOK {
		t.Fatalf("first completion: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/interview/complete", body, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second completion: want=%d got=%d", http.StatusConflict, rec.Code)
	}
}

func TestCompleteInterviewEndpointRequiresSession(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/interview/complete", map[string]any{}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
	if ts.evaluator.calls != 0 {
		t.Fatalf("evaluator called without session")
	}
}

func TestInterviewLifecycleEndpoints(t *testing.T) {
	ts := newTestServer(t)
	user := seedUser(t, ts.repo, "c@example.com", models.RoleCandidate)
	other := seedUser(t, ts.repo, "o@example.com", models.RoleCandidate)
	cookie := ts.sessionCookie(t, user)

	rec := ts.do(t, http.MethodPost, "/api/v1/interviews", validCreateInput(), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["interview"].(map[string]any)
	id := created["id"].(string)
	if stack := created["techStack"].([]any); len(stack) != 3 || stack[1] != "Rust" {
		t.Fatalf("techStack: got=%v", stack)
	}

	bad := validCreateInput()
	bad.NumberOfQuestions = "many"
	rec = ts.do(t, http.MethodPost, "/api/v1/interviews", bad, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create: want=400 got=%d", rec.Code)
	}
	if errs := decodeBody(t, rec)["errors"].(map[string]any); errs["numberOfQuestions"] == nil {
		t.Fatalf("missing numberOfQuestions error: got=%v", errs)
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/interviews/"+id, nil, cookie); rec.Code != http.StatusOK {
		t.Fatalf("get: status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/interviews/"+id, nil, ts.sessionCookie(t, other)); rec.Code != http.StatusNotFound {
		t.Fatalf("get by other: want=404 got=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/interviews/"+id+"/feedback", nil, cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("feedback before completion: want=404 got=%d", rec.Code)
	}

	complete := map[string]any{"id": id, "userid": user.ID, "conversation": testConversation()}
	if rec := ts.do(t, http.MethodPost, "/api/v1/interview/complete", complete, cookie); rec.Code != http.StatusOK {
		t.Fatalf("complete: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/interviews?completed=true", nil, cookie)
	if list := decodeBody(t, rec)["interviews"].([]any); len(list) != 1 {
		t.Fatalf("completed list: want=1 got=%d", len(list))
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/interviews/"+id+"/feedback", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback: status=%d", rec.Code)
	}
	feedback := decodeBody(t, rec)["feedback"].(map[string]any)
	if report := feedback["feedBack"].(map[string]any); len(report["transcript"].([]any)) != 2 {
		t.Fatalf("feedback transcript: got=%v", report)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/interviews/"+id, nil, ts.sessionCookie(t, other))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete by other: want=404 got=%d", rec.Code)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/interviews/"+id, nil, cookie)
	if rec.Code != http.StatusOK || decodeBody(t, rec)["success"] != "Interview deleted successfully." {
		t.Fatalf("delete: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/interviews/"+id+"/feedback", nil, cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("feedback after delete: want=404 got=%d", rec.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	ts := newTestServer(t)
	user := seedUser(t, ts.repo, "c@example.com", models.RoleCandidate)
	hr := seedUser(t, ts.repo, "hr@example.com", models.RoleHR)
	interview := seedInterview(t, ts.repo, user.ID)
	seedInterview(t, ts.repo, user.ID)
	cookie := ts.sessionCookie(t, user)

	complete := map[string]any{"id": interview.ID, "userid": user.ID, "conversation": testConversation()}
	if rec := ts.do(t, http.MethodPost, "/api/v1/interview/complete", complete, cookie); rec.Code != http.StatusOK {
		t.Fatalf("complete: status=%d", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/dashboard", nil, cookie)
	stats := decodeBody(t, rec)
	// (70+60+80+65+75+90) / 6 = 73.33
	if stats["totalInterviews"] != float64(2) || stats["completedInterviewsCount"] != float64(1) || stats["averageScore"] != float64(73) {
		t.Fatalf("dashboard: got=%v", stats)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboard/leaderboard", nil, cookie)
	board := decodeBody(t, rec)
	current := board["currentUser"].(map[string]any)
	if current["rank"] != float64(1) || current["score"] != float64(73) {
		t.Fatalf("leaderboard current user: got=%v", current)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboard/leaderboard", nil, ts.sessionCookie(t, hr))
	if current := decodeBody(t, rec)["currentUser"].(map[string]any); current["rank"] != float64(0) || current["score"] != nil {
		t.Fatalf("unranked user: got=%v", current)
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/dashboard/hr", nil, cookie); rec.Code != http.StatusForbidden {
		t.Fatalf("hr dashboard as candidate: want=403 got=%d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboard/hr", nil, ts.sessionCookie(t, hr))
	if rec.Code != http.StatusOK {
		t.Fatalf("hr dashboard: status=%d", rec.Code)
	}
	hrBody := decodeBody(t, rec)
	counts := hrBody["stats"].(map[string]any)
	if counts["totalUsers"] != float64(2) || counts["totalInterviews"] != float64(2) || counts["completedInterviews"] != float64(1) {
		t.Fatalf("hr stats: got=%v", counts)
	}
	recent := hrBody["recentInterviews"].([]any)
	if len(recent) != 1 || recent[0].(map[string]any)["user"] != "c" {
		t.Fatalf("recent interviews: got=%v", recent)
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/interviews/"+interview.ID+"/feedback", nil, ts.sessionCookie(t, hr)); rec.Code != http.StatusOK {
		t.Fatalf("hr feedback read: want=200 got=%d", rec.Code)
	}
}
