// internal/app/store/memberships/membershipstore.go
package membershipstore

// A membership is the join record between a user and a workspace. The
// workspace document also carries a denormalized member_ids list; the two
// are written separately and can briefly disagree.

import (
	"context"
	"errors"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
)

var errBadRole = errors.New(`role must be "owner", "admin" or "member"`)

type Store struct {
	gw docstore.Gateway
}

func New(gw docstore.Gateway) *Store {
	return &Store{gw: gw}
}

// NewMember builds a membership record joined at.
func NewMember(userID, workspaceID, role string, at time.Time) models.WorkspaceMember {
	return models.WorkspaceMember{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        role,
		JoinedAt:    at,
	}
}

// Post writes m and returns its generated id. Duplicates are not rejected
// here; callers pre-check with Exists.
func (s *Store) Post(ctx context.Context, m models.WorkspaceMember) (string, error) {
	if !models.ValidRole(m.Role) {
		return "", errBadRole
	}
	fields, err := docstore.Encode(m)
	if err != nil {
		return "", err
	}
	return s.gw.Put(ctx, docstore.WorkspaceMembers, "", fields)
}

// Exists reports whether any membership links userID to workspaceID.
func (s *Store) Exists(ctx context.Context, userID, workspaceID string) (bool, error) {
	docs, err := s.gw.Query(ctx, docstore.WorkspaceMembers, docstore.Filter{
		"user_id":      userID,
		"workspace_id": workspaceID,
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// ListByUser returns every membership held by userID.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.WorkspaceMemberRef, error) {
	docs, err := s.gw.Query(ctx, docstore.WorkspaceMembers, docstore.Filter{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// ListByWorkspace returns every membership in workspaceID.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceMemberRef, error) {
	docs, err := s.gw.Query(ctx, docstore.WorkspaceMembers, docstore.Filter{"workspace_id": workspaceID})
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// Subscribe delivers the full member list of workspaceID on every change.
func (s *Store) Subscribe(ctx context.Context, workspaceID string, onChange func([]models.WorkspaceMemberRef), onError func(error)) (docstore.Unsubscribe, error) {
	return s.watch(ctx, docstore.Filter{"workspace_id": workspaceID}, onChange, onError)
}

// SubscribeByUser delivers every membership held by userID on every change.
func (s *Store) SubscribeByUser(ctx context.Context, userID string, onChange func([]models.WorkspaceMemberRef), onError func(error)) (docstore.Unsubscribe, error) {
	return s.watch(ctx, docstore.Filter{"user_id": userID}, onChange, onError)
}

func (s *Store) watch(ctx context.Context, f docstore.Filter, onChange func([]models.WorkspaceMemberRef), onError func(error)) (docstore.Unsubscribe, error) {
	l, err := s.gw.Subscribe(ctx, docstore.WorkspaceMembers, f)
	if err != nil {
		return nil, err
	}
	return docstore.Watch(l, func(docs []docstore.Document) {
		refs, err := Decode(docs)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(refs)
	}, onError), nil
}

// Decode converts raw membership documents.
func Decode(docs []docstore.Document) ([]models.WorkspaceMemberRef, error) {
	out := make([]models.WorkspaceMemberRef, 0, len(docs))
	for _, d := range docs {
		var m models.WorkspaceMember
		if err := d.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, models.WorkspaceMemberRef{ID: d.ID, Member: m})
	}
	return out, nil
}
