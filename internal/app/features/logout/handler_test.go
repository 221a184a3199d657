package logout_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enidea/slack-clone/internal/app/features/logout"
	"github.com/enidea/slack-clone/internal/app/system/auth"
	"go.uber.org/zap"
)

type fakeSigner struct {
	calls  int
	err    error
	userID string
}

func (s *fakeSigner) SignOut(context.Context) error {
	s.calls++
	return s.err
}

func (s *fakeSigner) UserID() string { return s.userID }

func newTestHandler(t *testing.T, s *fakeSigner) (http.Handler, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return logout.Routes(logout.NewHandler(sm, s, nil, zap.NewNop())), sm
}

// logoutAs builds POST / carrying a session cookie for userID, or no
// cookie when userID is empty.
func logoutAs(t *testing.T, sm *auth.SessionManager, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/", nil)
	if userID == "" {
		return req
	}
	rec := httptest.NewRecorder()
	if err := sm.SetUser(rec, httptest.NewRequest("GET", "/auth/google/callback", nil), userID); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestServeLogout(t *testing.T) {
	tests := []struct {
		name      string
		signedIn  string
		cookie    string
		err       error
		want      int
		wantCalls int
	}{
		{"signs out", "u1", "u1", nil, http.StatusNoContent, 1},
		{"sign out fails", "u1", "u1", errors.New("boom"), http.StatusInternalServerError, 1},
		{"no cookie", "u1", "", nil, http.StatusUnauthorized, 0},
		{"other user's cookie", "u1", "u2", nil, http.StatusUnauthorized, 0},
		{"already signed out", "", "", nil, http.StatusNoContent, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSigner{err: tc.err, userID: tc.signedIn}
			h, sm := newTestHandler(t, s)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, logoutAs(t, sm, tc.cookie))

			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if s.calls != tc.wantCalls {
				t.Errorf("SignOut calls = %d, want %d", s.calls, tc.wantCalls)
			}
		})
	}
}

func TestServeLogout_ClearsCookie(t *testing.T) {
	h, sm := newTestHandler(t, &fakeSigner{userID: "u1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, logoutAs(t, sm, "u1"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			return
		}
	}
	t.Error("expected an expired session cookie")
}

func TestServeLogout_GetNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, &fakeSigner{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
