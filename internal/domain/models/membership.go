package models

import "time"

// Workspace roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether role is one of the workspace roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// WorkspaceMember is the join between a user and a workspace.
// There should be one document per (user_id, workspace_id); uniqueness is
// checked before insert rather than enforced by the store.
type WorkspaceMember struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	WorkspaceID string    `bson:"workspace_id" json:"workspace_id"`
	Role        string    `bson:"role" json:"role"` // owner | admin | member
	JoinedAt    time.Time `bson:"joined_at" json:"joined_at"`
}

// WorkspaceMemberRef pairs a WorkspaceMember with its document id.
type WorkspaceMemberRef struct {
	ID     string          `json:"id"`
	Member WorkspaceMember `json:"member"`
}
