package services

import (
	"net/http"
	"regexp"
)

var protectedPages = []*regexp.Regexp{
	regexp.MustCompile(`^/dashboard$`),
	regexp.MustCompile(`^/interview$`),
	regexp.MustCompile(`^/interview/.*$`),
}

// IsProtectedPage reports whether path needs a session cookie to be served
func IsProtectedPage(path string) bool {
	for _, re := range protectedPages {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// hasSessionCookie checks presence only; tokens are verified by the API middleware
func hasSessionCookie(r *http.Request) bool {
	return sessionToken(r) != ""
}

// SessionGate redirects requests for protected pages to loginPath when no
// session cookie is present. Other paths pass through untouched.
func SessionGate(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsProtectedPage(r.URL.Path) && !hasSessionCookie(r) {
				http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
