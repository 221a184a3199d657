// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/config"
	authgooglefeature "github.com/enidea/slack-clone/internal/app/features/authgoogle"
	channelsfeature "github.com/enidea/slack-clone/internal/app/features/channels"
	errorsfeature "github.com/enidea/slack-clone/internal/app/features/errors"
	healthfeature "github.com/enidea/slack-clone/internal/app/features/health"
	logoutfeature "github.com/enidea/slack-clone/internal/app/features/logout"
	messagesfeature "github.com/enidea/slack-clone/internal/app/features/messages"
	statefeature "github.com/enidea/slack-clone/internal/app/features/state"
	workspacesfeature "github.com/enidea/slack-clone/internal/app/features/workspaces"
	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"github.com/enidea/slack-clone/internal/app/system/auth"
	"github.com/enidea/slack-clone/internal/app/system/metrics"
	"github.com/enidea/slack-clone/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// Everything under /state, /workspaces, /channels, and /messages is a thin
// JSON adapter over the sync engine; the engine enforces the rules and the
// handlers only translate errors to status codes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.Runtime == nil || deps.Runtime.Engine == nil {
		return nil, errors.New("build handler: Startup did not build the engine")
	}
	eng := deps.Runtime.Engine

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(logger.Named("audit"), appCfg.AuditLog)

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	var ping healthfeature.Pinger
	if deps.MongoClient != nil {
		ping = healthfeature.MongoPinger(deps.MongoClient)
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(ping, appCfg.StoreBackend, logger)))
	r.Handle("/metrics", metrics.Handler())

	// Authentication
	googleHandler := authgooglefeature.NewHandler(sessionMgr, deps.Runtime.Google, eng, audit, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, eng, audit, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	// View state is readable signed out; it just shows no user.
	r.Mount("/state", statefeature.Routes(statefeature.NewHandler(eng, logger)))

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn(eng.UserID))

		r.Mount("/workspaces", workspacesfeature.Routes(workspacesfeature.NewHandler(eng, audit, logger),
			ratelimit.Middleware(deps.Runtime.JoinLimiter)))
		r.Mount("/channels", channelsfeature.Routes(channelsfeature.NewHandler(eng, logger)))
		r.Mount("/messages", messagesfeature.Routes(messagesfeature.NewHandler(eng, audit, logger)))
	})

	return r, nil
}
