// internal/app/store/workspaces/workspacestore.go
package workspacestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/enidea/slack-clone/internal/app/store/docstore"
	membershipstore "github.com/enidea/slack-clone/internal/app/store/memberships"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when a workspace id does not exist.
var ErrNotFound = fmt.Errorf("workspace: %w", docstore.ErrNotFound)

type Store struct {
	gw  docstore.Gateway
	now func() time.Time
}

func New(gw docstore.Gateway) *Store {
	return &Store{gw: gw, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source used for updated_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// NewWorkspace builds a workspace owned by ownerID whose member list holds
// only the owner.
func NewWorkspace(name, description, ownerID string, at time.Time) models.Workspace {
	return models.Workspace{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		MemberIDs:   []string{ownerID},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

// Post writes ws and returns its generated id.
func (s *Store) Post(ctx context.Context, ws models.Workspace) (string, error) {
	fields, err := docstore.Encode(ws)
	if err != nil {
		return "", err
	}
	return s.gw.Put(ctx, docstore.Workspaces, "", fields)
}

// Get point-reads a workspace.
func (s *Store) Get(ctx context.Context, id string) (models.Workspace, error) {
	doc, err := s.gw.Get(ctx, docstore.Workspaces, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Workspace{}, ErrNotFound
		}
		return models.Workspace{}, err
	}
	var ws models.Workspace
	if err := doc.Decode(&ws); err != nil {
		return models.Workspace{}, err
	}
	return ws, nil
}

// AppendMember adds userID to member_ids and refreshes updated_at. It is a
// read-modify-write, so two concurrent appends can lose one id; the
// membership record remains authoritative.
func (s *Store) AppendMember(ctx context.Context, id, userID string) error {
	ws, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if ws.HasMember(userID) {
		return nil
	}
	ids := append(append([]string(nil), ws.MemberIDs...), userID)
	err = s.gw.Update(ctx, docstore.Workspaces, id, bson.M{
		"member_ids": ids,
		"updated_at": s.now(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// SubscribeUserWorkspaces watches userID's memberships and, on each change,
// point-reads every referenced workspace. Memberships whose workspace is
// missing are skipped. A failed read reports to onError and withholds the
// list, so the previous one stays cached.
func (s *Store) SubscribeUserWorkspaces(ctx context.Context, userID string, onChange func([]models.WorkspaceRef), onError func(error)) (docstore.Unsubscribe, error) {
	l, err := s.gw.Subscribe(ctx, docstore.WorkspaceMembers, docstore.Filter{"user_id": userID})
	if err != nil {
		return nil, err
	}

	// Reads run on the delivery goroutine; cancelling rctx unblocks them
	// before the listener is closed.
	rctx, cancel := context.WithCancel(context.Background())

	unsub := docstore.Watch(l, func(docs []docstore.Document) {
		members, err := membershipstore.Decode(docs)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		list, err := s.resolve(rctx, members)
		if err != nil {
			if rctx.Err() == nil && onError != nil {
				onError(err)
			}
			return
		}
		onChange(list)
	}, onError)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			unsub()
		})
	}, nil
}

func (s *Store) resolve(ctx context.Context, members []models.WorkspaceMemberRef) ([]models.WorkspaceRef, error) {
	seen := make(map[string]bool, len(members))
	out := make([]models.WorkspaceRef, 0, len(members))
	for _, m := range members {
		wsID := m.Member.WorkspaceID
		if wsID == "" || seen[wsID] {
			continue
		}
		seen[wsID] = true
		ws, err := s.Get(ctx, wsID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.WorkspaceRef{ID: wsID, Workspace: ws})
	}
	SortByName(out)
	return out, nil
}

// SortByName orders refs case-insensitively by name, then by id.
func SortByName(refs []models.WorkspaceRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := text.Fold(refs[i].Workspace.Name), text.Fold(refs[j].Workspace.Name)
		if a != b {
			return a < b
		}
		return refs[i].ID < refs[j].ID
	})
}
