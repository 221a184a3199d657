// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"github.com/enidea/slack-clone/internal/app/services/membership"
	"github.com/enidea/slack-clone/internal/app/services/messaging"
	userstore "github.com/enidea/slack-clone/internal/app/store/users"
	"github.com/enidea/slack-clone/internal/app/system/googleauth"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"github.com/enidea/slack-clone/internal/app/system/livesync"
	"github.com/enidea/slack-clone/internal/app/system/ratelimit"
	"github.com/enidea/slack-clone/internal/app/system/timeouts"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"go.uber.org/zap"
)

// Runtime is the long-lived object graph built once at startup.
type Runtime struct {
	Engine      *livesync.Engine
	Google      *googleauth.Client
	JoinLimiter *ratelimit.Limiter
}

// Startup applies timeouts and builds the sync engine over the gateway
// opened in ConnectDB. The engine starts signed out.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil || deps.Gateway == nil {
		return errors.New("startup: ConnectDB did not provide a gateway")
	}

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})

	deps.Runtime.Engine = newEngine(deps, appCfg, logger)
	deps.Runtime.Google = googleauth.New(appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL)
	deps.Runtime.JoinLimiter = ratelimit.New(appCfg.JoinRateLimit, appCfg.JoinRateWindow)

	logger.Info("sync engine started",
		zap.String("backend", appCfg.StoreBackend),
		zap.Duration("invite_ttl", appCfg.InviteTTL))
	return nil
}

func newEngine(deps DBDeps, appCfg AppConfig, logger *zap.Logger) *livesync.Engine {
	gw := deps.Gateway
	return livesync.Start(livesync.Deps{
		Gateway:    gw,
		Session:    identity.New(userstore.New(gw), logger.Named("identity")),
		View:       viewstate.New(),
		Membership: membership.New(gw, logger.Named("membership"), membership.WithInviteTTL(appCfg.InviteTTL)),
		Messaging:  messaging.New(gw, logger.Named("messaging")),
		Logger:     logger.Named("livesync"),
	})
}
