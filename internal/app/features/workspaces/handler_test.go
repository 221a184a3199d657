package workspaces_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/enidea/slack-clone/internal/app/features/workspaces"
	"github.com/enidea/slack-clone/internal/app/services/membership"
	"github.com/enidea/slack-clone/internal/app/store/docstore/memdocs"
	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"github.com/enidea/slack-clone/internal/app/system/livesync"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"github.com/enidea/slack-clone/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHandler(t *testing.T) (http.Handler, *livesync.Engine) {
	t.Helper()
	clock := testutil.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	eng := testutil.StartEngine(t, memdocs.New(), clock)
	return workspaces.Routes(workspaces.NewHandler(eng, nil, zap.NewNop())), eng
}

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func create(t *testing.T, h http.Handler, name string) membership.Result {
	t.Helper()
	rec := do(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": name}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var res membership.Result
	testutil.DecodeJSON(t, rec, &res)
	return res
}

func TestHandleCreate_SelectsWorkspace(t *testing.T) {
	h, eng := newTestHandler(t)
	testutil.SignIn(t, eng, "u1")

	res := create(t, h, "  Acme  ")
	if res.WorkspaceID == "" || res.Name != "Acme" {
		t.Fatalf("result = %+v", res)
	}
	st := eng.State()
	if st.Workspace.CurrentWorkspaceID != res.WorkspaceID || st.Workspace.WorkspaceName != "Acme" {
		t.Errorf("workspace slice = %+v", st.Workspace)
	}
}

func TestHandleCreate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		signIn bool
		body   any
		want   int
	}{
		{"signed out", false, map[string]string{"name": "Acme"}, http.StatusUnauthorized},
		{"blank name", true, map[string]string{"name": "   "}, http.StatusBadRequest},
		{"unknown field", true, map[string]string{"title": "Acme"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, eng := newTestHandler(t)
			if tc.signIn {
				testutil.SignIn(t, eng, "u1")
			}
			rec := do(h, testutil.NewJSONRequest(t, "POST", "/", tc.body))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestInviteJoinAndMembers(t *testing.T) {
	h, eng := newTestHandler(t)
	testutil.SignIn(t, eng, "owner")
	ws := create(t, h, "Acme")

	rec := do(h, testutil.NewJSONRequest(t, "POST", "/"+ws.WorkspaceID+"/invites", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite status = %d: %s", rec.Code, rec.Body.String())
	}
	var inv struct {
		InviteCode string `json:"invite_code"`
	}
	testutil.DecodeJSON(t, rec, &inv)
	if inv.InviteCode == "" {
		t.Fatal("empty invite code")
	}

	if err := eng.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	testutil.SignIn(t, eng, "guest")

	rec = do(h, testutil.NewJSONRequest(t, "POST", "/join", map[string]string{"invite_code": inv.InviteCode}))
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := eng.State().Workspace.CurrentWorkspaceID; got != ws.WorkspaceID {
		t.Errorf("current workspace = %q, want %q", got, ws.WorkspaceID)
	}

	rec = do(h, testutil.NewJSONRequest(t, "POST", "/join", map[string]string{"invite_code": inv.InviteCode}))
	if rec.Code != http.StatusConflict {
		t.Errorf("second join status = %d, want 409", rec.Code)
	}

	rec = do(h, httptest.NewRequest("GET", "/"+ws.WorkspaceID+"/members", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("members status = %d: %s", rec.Code, rec.Body.String())
	}
	var members []membership.Member
	testutil.DecodeJSON(t, rec, &members)
	if len(members) != 2 {
		t.Errorf("members = %d, want 2", len(members))
	}
}

func TestHandleJoin_UnknownCode(t *testing.T) {
	h, eng := newTestHandler(t)
	testutil.SignIn(t, eng, "u1")

	rec := do(h, testutil.NewJSONRequest(t, "POST", "/join", map[string]string{"invite_code": "nope"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSelect(t *testing.T) {
	h, eng := newTestHandler(t)
	testutil.SignIn(t, eng, "u1")
	ws := create(t, h, "Acme")

	rec := do(h, testutil.NewJSONRequest(t, "POST", "/select", map[string]string{"workspace_id": ""}))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	var st viewstate.State
	testutil.DecodeJSON(t, rec, &st)
	if st.Workspace.CurrentWorkspaceID != "" {
		t.Errorf("after clear workspace = %q", st.Workspace.CurrentWorkspaceID)
	}

	rec = do(h, testutil.NewJSONRequest(t, "POST", "/select", map[string]string{"workspace_id": ws.WorkspaceID}))
	if rec.Code != http.StatusOK {
		t.Fatalf("select status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := eng.State().Workspace.CurrentWorkspaceID; got != ws.WorkspaceID {
		t.Errorf("current = %q, want %q", got, ws.WorkspaceID)
	}

	rec = do(h, testutil.NewJSONRequest(t, "POST", "/select", map[string]string{"workspace_id": "missing"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign select status = %d, want 404", rec.Code)
	}
}

func TestHandlers_Audit(t *testing.T) {
	clock := testutil.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	eng := testutil.StartEngine(t, memdocs.New(), clock)
	core, logs := observer.New(zapcore.InfoLevel)
	h := workspaces.Routes(workspaces.NewHandler(eng, auditlog.New(zap.New(core), auditlog.ModeLog), zap.NewNop()))
	testutil.SignIn(t, eng, "u1")

	res := create(t, h, "Acme")
	if rec := do(h, testutil.NewJSONRequest(t, "POST", "/"+res.WorkspaceID+"/invites", nil)); rec.Code != http.StatusCreated {
		t.Fatalf("invite status = %d", rec.Code)
	}
	if rec := do(h, testutil.NewJSONRequest(t, "POST", "/join", map[string]string{"invite_code": "NOPE"})); rec.Code != http.StatusNotFound {
		t.Fatalf("join status = %d", rec.Code)
	}

	var got []string
	for _, e := range logs.FilterField(zap.Bool("audit", true)).AllUntimed() {
		got = append(got, e.ContextMap()["event_type"].(string))
	}
	want := []string{auditlog.EventWorkspaceCreated, auditlog.EventInviteGenerated, auditlog.EventJoinFailed}
	if len(got) != len(want) {
		t.Fatalf("audit events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}
