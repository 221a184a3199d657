package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/enidea/slack-clone/internal/app/system/auth"
	"github.com/enidea/slack-clone/internal/testutil"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func memoryConfig() AppConfig {
	return AppConfig{
		StoreBackend:   BackendMemory,
		PollInterval:   time.Second,
		SessionKey:     "test-session-key-must-be-32-chars-long",
		SessionName:    "test-session",
		BaseURL:        "http://localhost:8080",
		InviteTTL:      24 * time.Hour,
		JoinRateLimit:  5,
		JoinRateWindow: time.Minute,
		TimeoutShort:   time.Second,
		TimeoutMedium:  2 * time.Second,
		AuditLog:       "log",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"memory ok", func(*AppConfig) {}, false},
		{"mongo ok", func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "slack_clone"
		}, false},
		{"mongo bad uri", func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = "postgres://nope"
			c.MongoDatabase = "slack_clone"
		}, true},
		{"mongo no database", func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = ""
		}, true},
		{"unknown backend", func(c *AppConfig) { c.StoreBackend = "redis" }, true},
		{"zero invite ttl", func(c *AppConfig) { c.InviteTTL = 0 }, true},
		{"zero poll interval", func(c *AppConfig) { c.PollInterval = 0 }, true},
		{"zero join rate", func(c *AppConfig) { c.JoinRateLimit = 0 }, true},
		{"bad audit mode", func(c *AppConfig) { c.AuditLog = "db" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := memoryConfig()
			tc.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

// boot runs the lifecycle hooks up to BuildHandler on the memory backend.
func boot(t *testing.T) (http.Handler, DBDeps) {
	t.Helper()
	ctx := context.Background()
	core := &config.CoreConfig{Env: "dev"}
	cfg := memoryConfig()

	deps, err := ConnectDB(ctx, core, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if err := EnsureSchema(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := Startup(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	t.Cleanup(func() {
		if err := Shutdown(context.Background(), core, cfg, deps, testLogger()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	h, err := BuildHandler(core, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h, deps
}

func TestLifecycle_MemoryBackend(t *testing.T) {
	h, deps := boot(t)
	if deps.MongoClient != nil {
		t.Error("memory backend should not open a Mongo client")
	}

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/state", "", http.StatusOK},
		{"POST", "/workspaces", `{"name":"Acme"}`, http.StatusUnauthorized},
		{"POST", "/messages", `{"text":"hi"}`, http.StatusUnauthorized},
		{"GET", "/auth/google", "", http.StatusServiceUnavailable},
		{"GET", "/no-such-route", "", http.StatusNotFound},
		{"GET", "/auth/logout", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

// sessionCookies mints the cookies a browser would hold after signing in
// as userID.
func sessionCookies(t *testing.T, cfg AppConfig, userID string) []*http.Cookie {
	t.Helper()
	sm, err := auth.NewSessionManager(cfg.SessionKey, cfg.SessionName, "", false, testLogger())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := sm.SetUser(rec, httptest.NewRequest("GET", "/auth/google/callback", nil), userID); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	return rec.Result().Cookies()
}

func TestLifecycle_SignedInFlow(t *testing.T) {
	h, deps := boot(t)
	eng := deps.Runtime.Engine
	testutil.SignIn(t, eng, "u1")
	cookies := sessionCookies(t, memoryConfig(), "u1")

	do := func(method, path, body string, withCookie bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if withCookie {
			for _, c := range cookies {
				req.AddCookie(c)
			}
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// The engine is signed in, but a request without the user's cookie is not.
	if rec := do("POST", "/workspaces", `{"name":"Acme"}`, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("cookie-less create workspace status = %d, want 401", rec.Code)
	}

	if rec := do("POST", "/workspaces", `{"name":"Acme"}`, true); rec.Code != http.StatusCreated {
		t.Fatalf("create workspace status = %d: %s", rec.Code, rec.Body.String())
	}
	if eng.State().Workspace.WorkspaceName != "Acme" {
		t.Errorf("workspace name = %q, want Acme", eng.State().Workspace.WorkspaceName)
	}

	if rec := do("POST", "/auth/logout", "", false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("cookie-less logout status = %d, want 401", rec.Code)
	}
	if !eng.State().SignedIn() {
		t.Fatal("cookie-less logout should not sign the engine out")
	}

	if rec := do("POST", "/auth/logout", "", true); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	testutil.Eventually(t, func() bool { return !eng.State().SignedIn() }, "signed out after logout")
}
