// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	stderrors "errors"
	"net/http"

	apierrors "github.com/enidea/slack-clone/internal/app/features/errors"
	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"github.com/enidea/slack-clone/internal/app/system/auth"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"github.com/enidea/slack-clone/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// Consent is the provider side of the flow.
type Consent interface {
	IsConfigured() bool
	AuthCodeURL(state string) string
	Code(code string) identity.Provider
}

// Signer completes sign-in with a provider.
type Signer interface {
	SignIn(ctx context.Context, p identity.Provider) (string, error)
}

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	Audit      *auditlog.Logger
	SessionMgr *auth.SessionManager
	Google     Consent
	Engine     Signer
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(sessionMgr *auth.SessionManager, google Consent, engine Signer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		Audit:      audit,
		SessionMgr: sessionMgr,
		Google:     google,
		Engine:     engine,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Redirects to Google's consent screen with a fresh state in the cookie.       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Google.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		apierrors.JSON(w, http.StatusServiceUnavailable, apierrors.Body{
			Error:   "google_not_configured",
			Message: "Google sign-in is not configured",
		})
		return
	}

	next := urlutil.SafeReturn(r.URL.Query().Get("next"), "", "/")
	state, err := h.SessionMgr.IssueState(w, r, next)
	if err != nil {
		h.Log.Error("failed to issue OAuth state", zap.Error(err))
		apierrors.Write(w, h.Log, err)
		return
	}

	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Checks state, exchanges the code, and signs the user in.                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	next, err := h.SessionMgr.ConsumeState(w, r, q.Get("state"))
	if err != nil {
		h.Log.Warn("invalid or expired OAuth state")
		apierrors.JSON(w, http.StatusBadRequest, apierrors.Body{
			Error:   "invalid_state",
			Message: err.Error(),
		})
		return
	}

	// Google reports a declined consent as ?error=access_denied and no code;
	// the provider turns the empty code into a cancellation.
	code := q.Get("code")
	if e := q.Get("error"); e != "" {
		h.Log.Info("Google OAuth declined",
			zap.String("error", e),
			zap.String("description", q.Get("error_description")))
		code = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, err := h.Engine.SignIn(ctx, h.Google.Code(code))
	if stderrors.Is(err, identity.ErrSignInCancelled) {
		h.Audit.SignInCancelled(r)
		http.Redirect(w, r, urlutil.AddOrSetQueryParams(next, map[string]string{"error": "sign_in_cancelled"}), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.Log.Error("sign-in failed", zap.Error(err))
		h.Audit.SignInFailed(r, apierrors.Code(err))
		apierrors.Write(w, h.Log, err)
		return
	}

	if err := h.SessionMgr.SetUser(w, r, userID); err != nil {
		h.Log.Error("failed to record signed-in user", zap.Error(err))
		apierrors.Write(w, h.Log, err)
		return
	}

	h.Audit.SignIn(r, userID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}
