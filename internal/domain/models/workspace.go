package models

import "time"

// Workspace is the top-level container owning channels and memberships.
//
// MemberIDs always contains OwnerID and only grows. It is a denormalized
// view of the workspace_members collection and may briefly lag behind it
// (a membership written before the member_ids append lands).
type Workspace struct {
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	OwnerID     string    `bson:"owner_id" json:"owner_id"`
	MemberIDs   []string  `bson:"member_ids" json:"member_ids"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID appears in MemberIDs.
func (w Workspace) HasMember(userID string) bool {
	for _, id := range w.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// WorkspaceRef pairs a Workspace with its document id.
type WorkspaceRef struct {
	ID        string    `json:"id"`
	Workspace Workspace `json:"workspace"`
}
