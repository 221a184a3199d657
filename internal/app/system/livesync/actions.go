package livesync

import (
	"context"
	"fmt"

	"github.com/enidea/slack-clone/internal/app/services/membership"
	"github.com/enidea/slack-clone/internal/app/services/messaging"
	"github.com/enidea/slack-clone/internal/app/system/apperr"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"github.com/enidea/slack-clone/internal/domain/models"
)

// SignIn runs p and signs the resulting user in. The view state follows
// through the auth observer.
func (e *Engine) SignIn(ctx context.Context, p identity.Provider) (string, error) {
	return e.session.SignIn(ctx, p)
}

// SignOut signs the current user out. Workflows still in flight may land
// their writes afterwards; their results no longer change the view.
func (e *Engine) SignOut(ctx context.Context) error {
	return e.session.SignOut(ctx)
}

func (e *Engine) currentUser() (string, error) {
	id := e.view.State().User.UserID
	if id == "" {
		return "", apperr.ErrSignedOut
	}
	return id, nil
}

// SelectWorkspace makes workspaceID current. The workspace must be in
// the user's list or the user must hold a membership in it.
func (e *Engine) SelectWorkspace(ctx context.Context, workspaceID string) error {
	st := e.view.State()
	userID := st.User.UserID
	if userID == "" {
		return apperr.ErrSignedOut
	}

	ref, ok := findWorkspace(st.Workspaces, workspaceID)
	if !ok {
		member, err := e.membership.IsUserWorkspaceMember(ctx, userID, workspaceID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("workspace %s: %w", workspaceID, apperr.ErrNotFound)
		}
		ws, err := e.membership.Workspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		ref = models.WorkspaceRef{ID: workspaceID, Workspace: ws}
	}
	return e.selectWorkspaceIfCurrent(ctx, userID, ref)
}

// ClearWorkspace drops the workspace selection.
func (e *Engine) ClearWorkspace(ctx context.Context) error {
	return e.do(ctx, func() { e.view.Dispatch(viewstate.ClearWorkspace{}) })
}

// SelectChannel makes channelID current. It must belong to the current
// workspace.
func (e *Engine) SelectChannel(ctx context.Context, channelID string) error {
	st := e.view.State()
	if !st.SignedIn() {
		return apperr.ErrSignedOut
	}
	wsID := st.Workspace.CurrentWorkspaceID
	if wsID == "" {
		return apperr.Invalid("workspace_id", "select a workspace first")
	}

	if !hasChannel(st.Channels, channelID) {
		ch, err := e.channels.Get(ctx, channelID)
		if err != nil {
			return err
		}
		if ch.WorkspaceID != wsID {
			return fmt.Errorf("channel %s: %w", channelID, apperr.ErrNotFound)
		}
	}

	return e.do(ctx, func() {
		if e.view.State().Workspace.CurrentWorkspaceID != wsID {
			return
		}
		e.view.Dispatch(viewstate.SelectChannel{ID: channelID})
	})
}

// ClearChannel drops the channel selection.
func (e *Engine) ClearChannel(ctx context.Context) error {
	return e.do(ctx, func() { e.view.Dispatch(viewstate.ClearChannel{}) })
}

// CreateWorkspace creates a workspace owned by the current user and
// selects it. A partial failure is returned as is and selects nothing.
func (e *Engine) CreateWorkspace(ctx context.Context, name, description string) (membership.Result, error) {
	userID, err := e.currentUser()
	if err != nil {
		return membership.Result{}, err
	}
	res, err := e.membership.CreateWorkspace(ctx, name, description, userID)
	if err != nil {
		return res, err
	}
	ref := models.WorkspaceRef{ID: res.WorkspaceID, Workspace: models.Workspace{Name: res.Name}}
	return res, e.selectWorkspaceIfCurrent(ctx, userID, ref)
}

// JoinByInvite redeems code for the current user and selects the joined
// workspace.
func (e *Engine) JoinByInvite(ctx context.Context, code string) (membership.Result, error) {
	userID, err := e.currentUser()
	if err != nil {
		return membership.Result{}, err
	}
	res, err := e.membership.JoinWorkspaceByInviteCode(ctx, userID, code)
	if err != nil {
		return res, err
	}
	ref := models.WorkspaceRef{ID: res.WorkspaceID, Workspace: models.Workspace{Name: res.Name}}
	return res, e.selectWorkspaceIfCurrent(ctx, userID, ref)
}

// GenerateInvite issues an invite for workspaceID, or for the current
// workspace when workspaceID is empty.
func (e *Engine) GenerateInvite(ctx context.Context, workspaceID string) (string, error) {
	st := e.view.State()
	if !st.SignedIn() {
		return "", apperr.ErrSignedOut
	}
	if workspaceID == "" {
		workspaceID = st.Workspace.CurrentWorkspaceID
	}
	return e.membership.GenerateInviteCode(ctx, workspaceID)
}

// Members lists the members of workspaceID.
func (e *Engine) Members(ctx context.Context, workspaceID string) ([]membership.Member, error) {
	if _, err := e.currentUser(); err != nil {
		return nil, err
	}
	return e.membership.ListMembers(ctx, workspaceID)
}

// CreateChannel adds a channel to the current workspace.
func (e *Engine) CreateChannel(ctx context.Context, name string) (string, error) {
	st := e.view.State()
	if !st.SignedIn() {
		return "", apperr.ErrSignedOut
	}
	if st.Workspace.CurrentWorkspaceID == "" {
		return "", apperr.Invalid("workspace_id", "select a workspace first")
	}
	return e.membership.CreateChannel(ctx, st.Workspace.CurrentWorkspaceID, name)
}

// SendMessage posts text to the current channel. With no channel selected
// or blank text it does nothing.
func (e *Engine) SendMessage(ctx context.Context, text string) (messaging.SendResult, error) {
	st := e.view.State()
	if !st.SignedIn() {
		return messaging.SendResult{}, apperr.ErrSignedOut
	}
	return e.messaging.Send(ctx, st.User.UserID, st.Channel.CurrentChannelID, text)
}

// EditMessage edits one of the current user's messages.
func (e *Engine) EditMessage(ctx context.Context, messageID, text string) (bool, error) {
	userID, err := e.currentUser()
	if err != nil {
		return false, err
	}
	return e.messaging.Edit(ctx, userID, messageID, text)
}

// DeleteMessage deletes one of the current user's messages.
func (e *Engine) DeleteMessage(ctx context.Context, messageID string, confirmed bool) error {
	userID, err := e.currentUser()
	if err != nil {
		return err
	}
	return e.messaging.Delete(ctx, userID, messageID, confirmed)
}

func findWorkspace(list []models.WorkspaceRef, id string) (models.WorkspaceRef, bool) {
	for _, w := range list {
		if w.ID == id {
			return w, true
		}
	}
	return models.WorkspaceRef{}, false
}

func hasChannel(list []models.ChannelRef, id string) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}
