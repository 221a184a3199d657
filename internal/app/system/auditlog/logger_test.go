package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(mode string) (*auditlog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return auditlog.New(zap.New(core), mode), logs
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode string
		want int
	}{
		{"", 1},
		{auditlog.ModeLog, 1},
		{auditlog.ModeOff, 0},
	}
	for _, tc := range tests {
		t.Run("mode="+tc.mode, func(t *testing.T) {
			l, logs := newObserved(tc.mode)
			l.SignOut(httptest.NewRequest("POST", "/auth/logout", nil), "u1")
			if logs.Len() != tc.want {
				t.Errorf("entries = %d, want %d", logs.Len(), tc.want)
			}
		})
	}
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *auditlog.Logger
	l.SignIn(httptest.NewRequest("GET", "/auth/google/callback", nil), "u1")
}

func TestLogger_Fields(t *testing.T) {
	l, logs := newObserved(auditlog.ModeLog)
	req := httptest.NewRequest("POST", "/workspaces/join", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	l.WorkspaceJoined(req, "u1", "ws1")
	l.JoinFailed(req, "u2", "invalid_invite")

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	joined := entries[0].ContextMap()
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("success level = %v, want info", entries[0].Level)
	}
	for k, want := range map[string]any{
		"audit":        true,
		"category":     auditlog.CategoryMembership,
		"event_type":   auditlog.EventWorkspaceJoined,
		"user_id":      "u1",
		"workspace_id": "ws1",
		"ip":           "203.0.113.9",
	} {
		if joined[k] != want {
			t.Errorf("%s = %v, want %v", k, joined[k], want)
		}
	}

	failed := entries[1].ContextMap()
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("failure level = %v, want warn", entries[1].Level)
	}
	if failed["failure_reason"] != "invalid_invite" {
		t.Errorf("failure_reason = %v", failed["failure_reason"])
	}
	if _, has := failed["workspace_id"]; has {
		t.Error("empty workspace_id should be omitted")
	}
}
