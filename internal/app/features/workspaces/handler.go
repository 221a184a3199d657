// internal/app/features/workspaces/handler.go
package workspaces

import (
	"context"
	"net/http"

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

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type selectRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

type inviteResponse struct {
	WorkspaceID string `json:"workspace_id"`
	InviteCode  string `json:"invite_code"`
}

// HandleCreate handles POST /workspaces. The new workspace becomes the
// current one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Engine.CreateWorkspace(ctx, req.Name, req.Description)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	h.Audit.WorkspaceCreated(r, h.Engine.State().User.UserID, res.WorkspaceID)
	apierrors.JSON(w, http.StatusCreated, res)
}

// HandleSelect handles POST /workspaces/select. An empty workspace_id
// clears the selection.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var err error
	if req.WorkspaceID == "" {
		err = h.Engine.ClearWorkspace(ctx)
	} else {
		err = h.Engine.SelectWorkspace(ctx, req.WorkspaceID)
	}
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, h.Engine.State())
}

// HandleJoin handles POST /workspaces/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := shared.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Engine.JoinByInvite(ctx, req.InviteCode)
	if err != nil {
		h.Audit.JoinFailed(r, h.Engine.State().User.UserID, apierrors.Code(err))
		apierrors.Write(w, h.Log, err)
		return
	}
	h.Audit.WorkspaceJoined(r, h.Engine.State().User.UserID, res.WorkspaceID)
	apierrors.JSON(w, http.StatusOK, res)
}

// HandleInvite handles POST /workspaces/{id}/invites.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	code, err := h.Engine.GenerateInvite(ctx, id)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	h.Audit.InviteGenerated(r, h.Engine.State().User.UserID, id)
	apierrors.JSON(w, http.StatusCreated, inviteResponse{WorkspaceID: id, InviteCode: code})
}

// ServeMembers handles GET /workspaces/{id}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	members, err := h.Engine.Members(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, members)
}
