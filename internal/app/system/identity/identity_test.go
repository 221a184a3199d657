package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/store/docstore/memdocs"
	userstore "github.com/enidea/slack-clone/internal/app/store/users"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"github.com/enidea/slack-clone/internal/testutil"
	"go.uber.org/zap"
)

func provider(p identity.Profile) identity.Provider {
	return identity.ProviderFunc(func(context.Context) (identity.Profile, error) { return p, nil })
}

func newSession(gw docstore.Gateway) *identity.Session {
	return identity.New(userstore.New(gw), zap.NewNop())
}

func TestSignIn_CreatesUserOnce(t *testing.T) {
	gw := memdocs.New()
	sess := newSession(gw)
	ctx := context.Background()
	p := identity.Profile{ID: "g-1", DisplayName: "Ada", Email: "ada@example.com"}

	id, err := sess.SignIn(ctx, provider(p))
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if id != "g-1" || sess.CurrentUserID() != "g-1" {
		t.Fatalf("expected g-1 signed in, got %q / %q", id, sess.CurrentUserID())
	}

	u, err := userstore.New(gw).Get(ctx, "g-1")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.DisplayName != "Ada" {
		t.Errorf("DisplayName: got %q", u.DisplayName)
	}

	// Second sign-in must not overwrite an existing record.
	if err := sess.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	p.DisplayName = "Changed"
	if _, err := sess.SignIn(ctx, provider(p)); err != nil {
		t.Fatalf("second SignIn failed: %v", err)
	}
	u, _ = userstore.New(gw).Get(ctx, "g-1")
	if u.DisplayName != "Ada" {
		t.Errorf("existing user was overwritten: %q", u.DisplayName)
	}
}

func TestSignIn_ProviderFailure(t *testing.T) {
	sess := newSession(memdocs.New())
	failing := identity.ProviderFunc(func(context.Context) (identity.Profile, error) {
		return identity.Profile{}, identity.ErrSignInCancelled
	})

	_, err := sess.SignIn(context.Background(), failing)
	if !errors.Is(err, identity.ErrSignInCancelled) {
		t.Fatalf("expected ErrSignInCancelled, got %v", err)
	}
	if sess.CurrentUserID() != "" {
		t.Error("session should remain signed out")
	}
}

func TestSignIn_TransportFailureStaysSignedOut(t *testing.T) {
	gw := memdocs.New()
	sess := newSession(gw)
	gw.FailNext("get", docstore.Users, errors.New("offline"))

	_, err := sess.SignIn(context.Background(), provider(identity.Profile{ID: "g-1"}))
	if !errors.Is(err, docstore.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if sess.CurrentUserID() != "" {
		t.Error("session should remain signed out")
	}
}

func TestOnAuthStateChanged(t *testing.T) {
	sess := newSession(memdocs.New())
	ctx := context.Background()

	rec := testutil.NewRecorder[string]()
	unsub := sess.OnAuthStateChanged(rec.Add)

	if _, err := sess.SignIn(ctx, provider(identity.Profile{ID: "g-1"})); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if err := sess.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	// Repeated sign-out does not notify.
	_ = sess.SignOut(ctx)

	unsub()
	if _, err := sess.SignIn(ctx, provider(identity.Profile{ID: "g-2"})); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	got := rec.All()
	want := []string{"", "g-1", ""}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
