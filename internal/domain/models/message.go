package models

import "time"

// Message belongs to exactly one channel and one author. Authorship
// (UserID) never changes after creation.
type Message struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	ChannelID string    `bson:"channel_id" json:"channel_id"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	IsEdited  bool      `bson:"is_edited" json:"is_edited"`
}

// MessageRef pairs a Message with its document id.
type MessageRef struct {
	ID      string  `json:"id"`
	Message Message `json:"message"`
}
