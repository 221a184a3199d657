package models

import "time"

// Channel is a topic-scoped message stream within one workspace.
type Channel struct {
	Name        string    `bson:"name" json:"name"`
	WorkspaceID string    `bson:"workspace_id" json:"workspace_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ChannelRef pairs a Channel with its document id.
type ChannelRef struct {
	ID      string  `json:"id"`
	Channel Channel `json:"channel"`
}
