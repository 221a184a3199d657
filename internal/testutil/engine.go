package testutil

import (
	"context"
	"testing"

	"github.com/enidea/slack-clone/internal/app/services/membership"
	"github.com/enidea/slack-clone/internal/app/services/messaging"
	"github.com/enidea/slack-clone/internal/app/store/docstore"
	userstore "github.com/enidea/slack-clone/internal/app/store/users"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"github.com/enidea/slack-clone/internal/app/system/livesync"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"go.uber.org/zap"
)

// StartEngine wires a livesync engine over gw with a silent logger and
// closes it when the test ends.
func StartEngine(t *testing.T, gw docstore.Gateway, clock *Clock) *livesync.Engine {
	t.Helper()
	logger := zap.NewNop()
	eng := livesync.Start(livesync.Deps{
		Gateway:    gw,
		Session:    identity.New(userstore.New(gw), logger),
		View:       viewstate.New(),
		Membership: membership.New(gw, logger, membership.WithClock(clock.Now)),
		Messaging:  messaging.NewWithClock(gw, logger, clock.Now),
		Logger:     logger,
	})
	t.Cleanup(eng.Close)
	return eng
}

// As is a provider that always signs in as id.
func As(id string) identity.Provider {
	return identity.ProviderFunc(func(context.Context) (identity.Profile, error) {
		return identity.Profile{ID: id, DisplayName: id, Email: id + "@example.com"}, nil
	})
}

// SignIn signs eng in as id and waits for the view state to follow.
func SignIn(t *testing.T, eng *livesync.Engine, id string) {
	t.Helper()
	if _, err := eng.SignIn(context.Background(), As(id)); err != nil {
		t.Fatalf("SignIn(%s): %v", id, err)
	}
	Eventually(t, func() bool { return eng.State().User.UserID == id }, "signed in as "+id)
}
