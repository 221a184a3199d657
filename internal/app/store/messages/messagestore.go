// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when a message id does not exist.
var ErrNotFound = fmt.Errorf("message: %w", docstore.ErrNotFound)

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

// NewMessage builds an unedited message stamped at.
func NewMessage(userID, channelID, text string, at time.Time) models.Message {
	return models.Message{
		UserID:    userID,
		ChannelID: channelID,
		Text:      text,
		CreatedAt: at,
		UpdatedAt: at,
		IsEdited:  false,
	}
}

// Post writes m and returns its generated id.
func (s *Store) Post(ctx context.Context, m models.Message) (string, error) {
	fields, err := docstore.Encode(m)
	if err != nil {
		return "", err
	}
	return s.gw.Put(ctx, docstore.Messages, "", fields)
}

// Get point-reads a message.
func (s *Store) Get(ctx context.Context, id string) (models.Message, error) {
	doc, err := s.gw.Get(ctx, docstore.Messages, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, err
	}
	var m models.Message
	if err := doc.Decode(&m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// Update replaces the text, marks the message edited, and refreshes
// updated_at. Authorship is not checked here.
func (s *Store) Update(ctx context.Context, id, text string) error {
	err := s.gw.Update(ctx, docstore.Messages, id, bson.M{
		"text":       text,
		"is_edited":  true,
		"updated_at": s.now(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete removes the message permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, docstore.Messages, id)
}

// Subscribe delivers the channel's full message list, newest first, on
// every change.
func (s *Store) Subscribe(ctx context.Context, channelID string, onChange func([]models.MessageRef), onError func(error)) (docstore.Unsubscribe, error) {
	l, err := s.gw.Subscribe(ctx, docstore.Messages, docstore.Filter{"channel_id": channelID})
	if err != nil {
		return nil, err
	}
	return docstore.Watch(l, func(docs []docstore.Document) {
		refs, err := decodeAll(docs)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		SortNewestFirst(refs)
		onChange(refs)
	}, onError), nil
}

// SortNewestFirst orders refs by created_at descending. Equal timestamps
// fall back to ascending id so the order is identical on every snapshot.
// Edits never move a message because created_at is immutable.
func SortNewestFirst(refs []models.MessageRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i].Message.CreatedAt, refs[j].Message.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return refs[i].ID < refs[j].ID
	})
}

func decodeAll(docs []docstore.Document) ([]models.MessageRef, error) {
	refs := make([]models.MessageRef, 0, len(docs))
	for _, d := range docs {
		var m models.Message
		if err := d.Decode(&m); err != nil {
			return nil, err
		}
		refs = append(refs, models.MessageRef{ID: d.ID, Message: m})
	}
	return refs, nil
}
