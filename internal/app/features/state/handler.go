// internal/app/features/state/handler.go
package state

import (
	"net/http"

	apierrors "github.com/enidea/slack-clone/internal/app/features/errors"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"go.uber.org/zap"
)

// Source is the view state the presentation reads.
type Source interface {
	State() viewstate.State
	Observe(fn func(viewstate.State)) (unsubscribe func())
}

type Handler struct {
	Log    *zap.Logger
	Engine Source
}

func NewHandler(engine Source, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Engine: engine}
}

// ServeState handles GET /state with the current view state.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	apierrors.JSON(w, http.StatusOK, h.Engine.State())
}
