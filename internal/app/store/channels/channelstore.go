// internal/app/store/channels/channelstore.go
package channelstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
)

// ErrNotFound is returned when a channel id does not exist.
var ErrNotFound = fmt.Errorf("channel: %w", docstore.ErrNotFound)

type Store struct {
	gw docstore.Gateway
}

func New(gw docstore.Gateway) *Store {
	return &Store{gw: gw}
}

// NewChannel builds a channel in workspaceID stamped at.
func NewChannel(name, workspaceID string, at time.Time) models.Channel {
	return models.Channel{Name: name, WorkspaceID: workspaceID, CreatedAt: at}
}

// Post writes c and returns its generated id.
func (s *Store) Post(ctx context.Context, c models.Channel) (string, error) {
	fields, err := docstore.Encode(c)
	if err != nil {
		return "", err
	}
	return s.gw.Put(ctx, docstore.Channels, "", fields)
}

// Get point-reads a channel.
func (s *Store) Get(ctx context.Context, id string) (models.Channel, error) {
	doc, err := s.gw.Get(ctx, docstore.Channels, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Channel{}, ErrNotFound
		}
		return models.Channel{}, err
	}
	var c models.Channel
	if err := doc.Decode(&c); err != nil {
		return models.Channel{}, err
	}
	return c, nil
}

// Subscribe delivers every channel in workspaceID, oldest first, on every
// change.
func (s *Store) Subscribe(ctx context.Context, workspaceID string, onChange func([]models.ChannelRef), onError func(error)) (docstore.Unsubscribe, error) {
	l, err := s.gw.Subscribe(ctx, docstore.Channels, docstore.Filter{"workspace_id": workspaceID})
	if err != nil {
		return nil, err
	}
	return docstore.Watch(l, func(docs []docstore.Document) {
		refs := make([]models.ChannelRef, 0, len(docs))
		for _, d := range docs {
			var c models.Channel
			if err := d.Decode(&c); err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			refs = append(refs, models.ChannelRef{ID: d.ID, Channel: c})
		}
		sort.SliceStable(refs, func(i, j int) bool {
			a, b := refs[i].Channel.CreatedAt, refs[j].Channel.CreatedAt
			if !a.Equal(b) {
				return a.Before(b)
			}
			return refs[i].ID < refs[j].ID
		})
		onChange(refs)
	}, onError), nil
}
