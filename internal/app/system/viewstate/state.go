// Package viewstate holds what the current session is looking at: who is
// signed in, which workspace and channel are selected, and the live lists
// behind them.
//
// Every change goes through Reduce. Each slice has its own reducer; the
// rules that reach across slices are spelled out in Reduce so they stay
// visible.
package viewstate

import "github.com/enidea/slack-clone/internal/domain/models"

type UserSlice struct {
	UserID string `json:"user_id"`
}

type WorkspaceSlice struct {
	CurrentWorkspaceID string `json:"current_workspace_id"`
	WorkspaceName      string `json:"workspace_name"`
}

type ChannelSlice struct {
	CurrentChannelID string `json:"current_channel_id"`
}

// Failure is the most recent subscription error.
type Failure struct {
	Source  Source `json:"source"`
	Message string `json:"message"`
}

// State is an immutable value. The list slices are replaced, never edited
// in place, so copies of State may share them.
type State struct {
	User      UserSlice      `json:"user"`
	Workspace WorkspaceSlice `json:"workspace"`
	Channel   ChannelSlice   `json:"channel"`

	Workspaces []models.WorkspaceRef `json:"workspaces"`
	Channels   []models.ChannelRef   `json:"channels"`
	Messages   []models.MessageRef   `json:"messages"`

	LastError *Failure `json:"last_error,omitempty"`
}

// SignedIn reports whether a user is signed in.
func (s State) SignedIn() bool { return s.User.UserID != "" }
