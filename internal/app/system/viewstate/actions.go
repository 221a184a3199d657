package viewstate

import "github.com/enidea/slack-clone/internal/domain/models"

// Action is a plain payload fed to Reduce. Actions never carry behavior;
// I/O results arrive here already resolved.
type Action interface{ action() }

type (
	Login  struct{ UserID string }
	Logout struct{}

	SelectWorkspace struct{ ID, Name string }
	ClearWorkspace  struct{}

	SelectChannel struct{ ID string }
	ClearChannel  struct{}

	// WorkspacesLoaded replaces the workspace list for UserID.
	WorkspacesLoaded struct {
		UserID     string
		Workspaces []models.WorkspaceRef
	}

	// ChannelsLoaded replaces the channel list for WorkspaceID.
	ChannelsLoaded struct {
		WorkspaceID string
		Channels    []models.ChannelRef
	}

	// MessagesLoaded replaces the message list for ChannelID.
	MessagesLoaded struct {
		ChannelID string
		Messages  []models.MessageRef
	}

	// SubscriptionFailed records a listener error. Cached lists stay.
	SubscriptionFailed struct {
		Source Source
		Key    string
		Err    error
	}
)

func (Login) action()              {}
func (Logout) action()             {}
func (SelectWorkspace) action()    {}
func (ClearWorkspace) action()     {}
func (SelectChannel) action()      {}
func (ClearChannel) action()       {}
func (WorkspacesLoaded) action()   {}
func (ChannelsLoaded) action()     {}
func (MessagesLoaded) action()     {}
func (SubscriptionFailed) action() {}

// Source names which live list a failure or load belongs to.
type Source string

const (
	SourceWorkspaces Source = "workspaces"
	SourceChannels   Source = "channels"
	SourceMessages   Source = "messages"
)
