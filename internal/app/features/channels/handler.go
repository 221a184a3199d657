// internal/app/features/channels/handler.go
package channels

import (
	"context"
	"net/http"

	apierrors "github.com/enidea/slack-clone/internal/app/features/errors"
	"github.com/enidea/slack-clone/internal/app/features/shared"
	"github.com/enidea/slack-clone/internal/app/system/livesync"
	"github.com/enidea/slack-clone/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log    *zap.Logger
	Engine *livesync.Engine
}

func NewHandler(engine *livesync.Engine, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Engine: engine}
}

type createRequest struct {
	Name string `json:"name"`
}

type createResponse struct {
	ChannelID string `json:"channel_id"`
}

type selectRequest struct {
	ChannelID string `json:"channel_id"`
}

// HandleCreate handles POST /channels in the current workspace.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := h.Engine.CreateChannel(ctx, req.Name)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusCreated, createResponse{ChannelID: id})
}

// HandleSelect handles POST /channels/select. An empty channel_id clears
// the selection.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var err error
	if req.ChannelID == "" {
		err = h.Engine.ClearChannel(ctx)
	} else {
		err = h.Engine.SelectChannel(ctx, req.ChannelID)
	}
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, h.Engine.State())
}
