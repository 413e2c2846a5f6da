package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsProtectedPage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/dashboard", true},
		{"/dashboard/settings", false},
		{"/interview", true},
		{"/interview/", true},
		{"/interview/abc/feedback", true},
		{"/interviews", false},
		{"/login", false},
		{"/", false},
		{"/api/v1/interviews/abc", false},
	}
	for _, tt := range tests {
		if got := IsProtectedPage(tt.path); got != tt.want {
			t.Fatalf("IsProtectedPage(%q): want=%v got=%v", tt.path, tt.want, got)
		}
	}
}

func TestSessionGate(t *testing.T) {
	handler := SessionGate("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		path       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{name: "protected without cookie", path: "/dashboard", wantStatus: http.StatusTemporaryRedirect},
		{name: "nested interview without cookie", path: "/interview/123", wantStatus: http.StatusTemporaryRedirect},
		{name: "dev cookie", path: "/dashboard", cookie: &http.Cookie{Name: SessionCookie, Value: "x"}, wantStatus: http.StatusOK},
		{name: "secure cookie", path: "/interview", cookie: &http.Cookie{Name: SecureSessionCookie, Value: "x"}, wantStatus: http.StatusOK},
		{name: "unrelated cookie", path: "/interview", cookie: &http.Cookie{Name: "theme", Value: "dark"}, wantStatus: http.StatusTemporaryRedirect},
		{name: "public page", path: "/login", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: want=%d got=%d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusTemporaryRedirect && rec.Header().Get("Location") != "/login" {
				t.Fatalf("location: got=%q", rec.Header().Get("Location"))
			}
		})
	}
}
