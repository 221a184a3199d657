package models

import "time"

// InviteTTL is how long an invite code stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

// WorkspaceInvite is a shareable, time-boxed code granting membership.
// It is not single-use: any number of users may redeem it while it is
// active and unexpired.
type WorkspaceInvite struct {
	WorkspaceID string    `bson:"workspace_id" json:"workspace_id"`
	InviteCode  string    `bson:"invite_code" json:"invite_code"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expires_at"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
}

// Expired reports whether the invite is past its expiry at now.
// The is_active flag does not factor in; expiry always wins.
func (i WorkspaceInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// WorkspaceInviteRef pairs a WorkspaceInvite with its document id.
type WorkspaceInviteRef struct {
	ID     string          `json:"id"`
	Invite WorkspaceInvite `json:"invite"`
}
