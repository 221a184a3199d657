package viewstate

// Reduce returns the state after applying a. It performs no I/O.
//
// Cross-slice rules:
//   - Logout, or Login as a different user, clears the workspace and
//     channel selections and every list.
//   - Selecting a different workspace, or clearing it, clears the channel
//     selection along with the channel and message lists.
//   - Selecting a different channel, or clearing it, clears the message
//     list.
func Reduce(s State, a Action) State {
	next := s
	next.User = reduceUser(s.User, a)
	next.Workspace = reduceWorkspace(s.Workspace, a)
	next.Channel = reduceChannel(s.Channel, a)

	if s.User.UserID != next.User.UserID {
		next.Workspace = WorkspaceSlice{}
		next.Channel = ChannelSlice{}
		next.Workspaces, next.Channels, next.Messages = nil, nil, nil
		next.LastError = nil
	}
	if s.Workspace.CurrentWorkspaceID != next.Workspace.CurrentWorkspaceID {
		next.Channel = ChannelSlice{}
		next.Channels, next.Messages = nil, nil
	}
	if s.Channel.CurrentChannelID != next.Channel.CurrentChannelID {
		next.Messages = nil
	}

	return reduceLists(next, a)
}

func reduceUser(s UserSlice, a Action) UserSlice {
	switch a := a.(type) {
	case Login:
		return UserSlice{UserID: a.UserID}
	case Logout:
		return UserSlice{}
	}
	return s
}

func reduceWorkspace(s WorkspaceSlice, a Action) WorkspaceSlice {
	switch a := a.(type) {
	case SelectWorkspace:
		return WorkspaceSlice{CurrentWorkspaceID: a.ID, WorkspaceName: a.Name}
	case ClearWorkspace, Logout:
		return WorkspaceSlice{}
	}
	return s
}

func reduceChannel(s ChannelSlice, a Action) ChannelSlice {
	switch a := a.(type) {
	case SelectChannel:
		return ChannelSlice{CurrentChannelID: a.ID}
	case ClearChannel, Logout:
		return ChannelSlice{}
	}
	return s
}

// reduceLists applies list loads and failures. A load keyed to something
// other than the current selection is dropped.
func reduceLists(s State, a Action) State {
	switch a := a.(type) {
	case WorkspacesLoaded:
		if a.UserID == "" || a.UserID != s.User.UserID {
			return s
		}
		s.Workspaces = a.Workspaces
		s.LastError = clearFailure(s.LastError, SourceWorkspaces)
	case ChannelsLoaded:
		if a.WorkspaceID == "" || a.WorkspaceID != s.Workspace.CurrentWorkspaceID {
			return s
		}
		s.Channels = a.Channels
		s.LastError = clearFailure(s.LastError, SourceChannels)
	case MessagesLoaded:
		if a.ChannelID == "" || a.ChannelID != s.Channel.CurrentChannelID {
			return s
		}
		s.Messages = a.Messages
		s.LastError = clearFailure(s.LastError, SourceMessages)
	case SubscriptionFailed:
		if a.Err != nil {
			s.LastError = &Failure{Source: a.Source, Message: a.Err.Error()}
		}
	}
	return s
}

func clearFailure(f *Failure, src Source) *Failure {
	if f != nil && f.Source == src {
		return nil
	}
	return f
}
