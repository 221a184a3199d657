package googleauth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/enidea/slack-clone/internal/app/system/googleauth"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1234","email":"ada@example.com","name":"Ada","picture":"https://example.com/a.png"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *googleauth.Client {
	return googleauth.New("id", "secret", "http://localhost:8080").WithEndpoint(oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo")
}

func TestAuthCodeURL(t *testing.T) {
	c := googleauth.New("client-123", "secret", "http://localhost:8080")
	u, err := url.Parse(c.AuthCodeURL("xyz"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "xyz" || q.Get("client_id") != "client-123" {
		t.Errorf("unexpected query: %v", q)
	}
	if !strings.HasSuffix(q.Get("redirect_uri"), "/auth/google/callback") {
		t.Errorf("redirect_uri: %q", q.Get("redirect_uri"))
	}
}

func TestIsConfigured(t *testing.T) {
	if googleauth.New("", "", "").IsConfigured() {
		t.Error("expected unconfigured without credentials")
	}
	if !googleauth.New("id", "secret", "").IsConfigured() {
		t.Error("expected configured with credentials")
	}
}

func TestCode_ExchangesAndFetchesProfile(t *testing.T) {
	c := newClient(fakeGoogle(t))

	p, err := c.Code("good-code").SignIn(context.Background())
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	want := identity.Profile{ID: "1234", DisplayName: "Ada", Email: "ada@example.com", ProfilePicture: "https://example.com/a.png"}
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
}

func TestCode_Empty(t *testing.T) {
	c := googleauth.New("id", "secret", "")
	_, err := c.Code("").SignIn(context.Background())
	if !errors.Is(err, identity.ErrSignInCancelled) {
		t.Errorf("expected ErrSignInCancelled, got %v", err)
	}
}

func TestCode_BadCode(t *testing.T) {
	c := newClient(fakeGoogle(t))
	if _, err := c.Code("bad-code").SignIn(context.Background()); err == nil {
		t.Error("expected exchange failure")
	}
}
