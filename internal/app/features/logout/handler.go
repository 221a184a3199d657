// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	apierrors "github.com/enidea/slack-clone/internal/app/features/errors"
	"github.com/enidea/slack-clone/internal/app/system/apperr"
	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"github.com/enidea/slack-clone/internal/app/system/auth"
	"go.uber.org/zap"
)

// Signer ends the identity session. UserID is the signed-in user, or ""
// when signed out.
type Signer interface {
	SignOut(ctx context.Context) error
	UserID() string
}

type Handler struct {
	Log        *zap.Logger
	Audit      *auditlog.Logger
	SessionMgr *auth.SessionManager
	Engine     Signer
}

func NewHandler(sessionMgr *auth.SessionManager, engine Signer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		Audit:      audit,
		SessionMgr: sessionMgr,
		Engine:     engine,
	}
}

// ServeLogout handles POST /auth/logout. Only the request carrying the
// signed-in user's cookie may sign out; anyone else gets 401. Signing out
// an already signed-out engine succeeds and just clears the cookie.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	userID := h.Engine.UserID()
	if userID != "" && !h.SessionMgr.Owns(r, userID) {
		apierrors.Write(w, h.Log, apperr.ErrSignedOut)
		return
	}
	if err := h.Engine.SignOut(r.Context()); err != nil {
		h.Log.Error("logout: sign out", zap.Error(err))
		apierrors.Write(w, h.Log, err)
		return
	}
	h.SessionMgr.Clear(w, r)
	if userID != "" {
		h.Audit.SignOut(r, userID)
	}
	w.WriteHeader(http.StatusNoContent)
}
