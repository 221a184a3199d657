// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
)

// ErrNotFound is returned when no user exists for an identity id.
var ErrNotFound = fmt.Errorf("user: %w", docstore.ErrNotFound)

type Store struct {
	gw docstore.Gateway
}

func New(gw docstore.Gateway) *Store {
	return &Store{gw: gw}
}

// NewUser builds a user record from provider profile attributes.
func NewUser(displayName, email, profilePicture string) models.User {
	return models.User{
		DisplayName:    strings.TrimSpace(displayName),
		Email:          strings.TrimSpace(email),
		ProfilePicture: profilePicture,
	}
}

// Get point-reads the user keyed by identity id.
func (s *Store) Get(ctx context.Context, id string) (models.User, error) {
	doc, err := s.gw.Get(ctx, docstore.Users, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	var u models.User
	if err := doc.Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Post writes u under the identity id.
func (s *Store) Post(ctx context.Context, id string, u models.User) error {
	fields, err := docstore.Encode(u)
	if err != nil {
		return err
	}
	_, err = s.gw.Put(ctx, docstore.Users, id, fields)
	return err
}
