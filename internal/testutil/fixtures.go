package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
)

// Fixtures writes test data straight through a gateway, bypassing the
// repositories so tests can set up states the workflows never produce.
type Fixtures struct {
	gw docstore.Gateway
	t  *testing.T
}

// NewFixtures creates a Fixtures instance over gw.
func NewFixtures(t *testing.T, gw docstore.Gateway) *Fixtures {
	t.Helper()
	return &Fixtures{gw: gw, t: t}
}

func (f *Fixtures) put(ctx context.Context, collection, id string, v any) string {
	f.t.Helper()
	fields, err := docstore.Encode(v)
	if err != nil {
		f.t.Fatalf("encode %s fixture: %v", collection, err)
	}
	id, err = f.gw.Put(ctx, collection, id, fields)
	if err != nil {
		f.t.Fatalf("create %s fixture: %v", collection, err)
	}
	return id
}

// CreateUser writes a user record keyed by id.
func (f *Fixtures) CreateUser(ctx context.Context, id, name, email string) models.User {
	f.t.Helper()
	u := models.User{DisplayName: name, Email: email, ProfilePicture: "https://example.com/" + id + ".png"}
	f.put(ctx, docstore.Users, id, u)
	return u
}

// CreateWorkspace writes a workspace document without any membership.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name, ownerID string) models.WorkspaceRef {
	f.t.Helper()
	now := time.Now().UTC()
	ws := models.Workspace{
		Name:      name,
		OwnerID:   ownerID,
		MemberIDs: []string{ownerID},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id := f.put(ctx, docstore.Workspaces, "", ws)
	return models.WorkspaceRef{ID: id, Workspace: ws}
}

// CreateMembership writes a membership record.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, workspaceID, role string) string {
	f.t.Helper()
	m := models.WorkspaceMember{UserID: userID, WorkspaceID: workspaceID, Role: role, JoinedAt: time.Now().UTC()}
	return f.put(ctx, docstore.WorkspaceMembers, "", m)
}

// CreateInvite writes an invite with explicit expiry and active flag.
func (f *Fixtures) CreateInvite(ctx context.Context, workspaceID, code string, expiresAt time.Time, active bool) string {
	f.t.Helper()
	inv := models.WorkspaceInvite{
		WorkspaceID: workspaceID,
		InviteCode:  code,
		CreatedAt:   expiresAt.Add(-models.InviteTTL),
		ExpiresAt:   expiresAt,
		IsActive:    active,
	}
	return f.put(ctx, docstore.WorkspaceInvites, "", inv)
}

// CreateChannel writes a channel in workspaceID.
func (f *Fixtures) CreateChannel(ctx context.Context, workspaceID, name string) string {
	f.t.Helper()
	ch := models.Channel{Name: name, WorkspaceID: workspaceID, CreatedAt: time.Now().UTC()}
	return f.put(ctx, docstore.Channels, "", ch)
}

// CreateMessage writes a message with the given creation time.
func (f *Fixtures) CreateMessage(ctx context.Context, userID, channelID, text string, at time.Time) string {
	f.t.Helper()
	m := models.Message{UserID: userID, ChannelID: channelID, Text: text, CreatedAt: at, UpdatedAt: at}
	return f.put(ctx, docstore.Messages, "", m)
}
