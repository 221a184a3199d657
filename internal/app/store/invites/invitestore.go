// internal/app/store/invites/invitestore.go
package invitestore

import (
	"context"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
)

type Store struct {
	gw docstore.Gateway
}

func New(gw docstore.Gateway) *Store {
	return &Store{gw: gw}
}

// NewInvite builds an active invite for workspaceID that expires ttl after at.
func NewInvite(workspaceID, code string, at time.Time, ttl time.Duration) models.WorkspaceInvite {
	return models.WorkspaceInvite{
		WorkspaceID: workspaceID,
		InviteCode:  code,
		CreatedAt:   at,
		ExpiresAt:   at.Add(ttl),
		IsActive:    true,
	}
}

// Post writes inv and returns its generated id. Codes are not checked for
// uniqueness.
func (s *Store) Post(ctx context.Context, inv models.WorkspaceInvite) (string, error) {
	fields, err := docstore.Encode(inv)
	if err != nil {
		return "", err
	}
	return s.gw.Put(ctx, docstore.WorkspaceInvites, "", fields)
}

// FindActiveByCode returns the first active invite carrying code. found is
// false when none exists. Expiry is left to the caller.
func (s *Store) FindActiveByCode(ctx context.Context, code string) (ref models.WorkspaceInviteRef, found bool, err error) {
	docs, err := s.gw.Query(ctx, docstore.WorkspaceInvites, docstore.Filter{
		"invite_code": code,
		"is_active":   true,
	})
	if err != nil {
		return models.WorkspaceInviteRef{}, false, err
	}
	if len(docs) == 0 {
		return models.WorkspaceInviteRef{}, false, nil
	}
	var inv models.WorkspaceInvite
	if err := docs[0].Decode(&inv); err != nil {
		return models.WorkspaceInviteRef{}, false, err
	}
	return models.WorkspaceInviteRef{ID: docs[0].ID, Invite: inv}, true, nil
}

// ListByWorkspace returns every invite ever issued for workspaceID.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceInviteRef, error) {
	docs, err := s.gw.Query(ctx, docstore.WorkspaceInvites, docstore.Filter{"workspace_id": workspaceID})
	if err != nil {
		return nil, err
	}
	out := make([]models.WorkspaceInviteRef, 0, len(docs))
	for _, d := range docs {
		var inv models.WorkspaceInvite
		if err := d.Decode(&inv); err != nil {
			return nil, err
		}
		out = append(out, models.WorkspaceInviteRef{ID: d.ID, Invite: inv})
	}
	return out, nil
}
