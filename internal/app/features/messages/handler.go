// internal/app/features/messages/handler.go
package messages

import (
	"context"
	"net/http"
	"strconv"

	apierrors "github.com/enidea/slack-clone/internal/app/features/errors"
	"github.com/enidea/slack-clone/internal/app/features/shared"
	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"github.com/enidea/slack-clone/internal/app/system/livesync"
	"github.com/enidea/slack-clone/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Log    *zap.Logger
	Audit  *auditlog.Logger
	Engine *livesync.Engine
}

func NewHandler(engine *livesync.Engine, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Audit: audit, Engine: engine}
}

type textRequest struct {
	Text string `json:"text"`
}

type editResponse struct {
	Edited bool `json:"edited"`
}

// HandleSend handles POST /messages into the current channel. Blank text
// answers 200 with sent=false.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Engine.SendMessage(ctx, req.Text)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	status := http.StatusOK
	if res.Sent {
		status = http.StatusCreated
	}
	apierrors.JSON(w, status, res)
}

// HandleEdit handles PATCH /messages/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	edited, err := h.Engine.EditMessage(ctx, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, editResponse{Edited: edited})
}

// HandleDelete handles DELETE /messages/{id}?confirm=true. Without the
// confirmation nothing is deleted.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Engine.DeleteMessage(ctx, id, confirmed); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	h.Audit.MessageDeleted(r, h.Engine.State().User.UserID, id)
	w.WriteHeader(http.StatusNoContent)
}
