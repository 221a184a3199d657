// Package identity tracks who is signed in. Authentication itself is
// delegated to a Provider; the session only records the resulting id,
// makes sure a user record exists for it, and tells observers whenever
// the id changes.
package identity

import (
	"context"
	"errors"
	"sync"

	userstore "github.com/enidea/slack-clone/internal/app/store/users"
	"github.com/enidea/slack-clone/internal/app/system/apperr"
	"go.uber.org/zap"
)

// ErrSignInCancelled is returned by a Provider when the user backs out.
var ErrSignInCancelled = errors.New("sign-in cancelled")

// Profile is what a provider knows about the person who signed in.
type Profile struct {
	ID             string
	DisplayName    string
	Email          string
	ProfilePicture string
}

// Provider performs one interactive sign-in.
type Provider interface {
	SignIn(ctx context.Context) (Profile, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Profile, error)

func (f ProviderFunc) SignIn(ctx context.Context) (Profile, error) { return f(ctx) }

// Session holds the current user id. The empty string means signed out.
type Session struct {
	users  *userstore.Store
	logger *zap.Logger

	// emit serializes transitions so observers see them in order.
	emit sync.Mutex

	mu        sync.Mutex
	userID    string
	observers map[int]func(string)
	nextID    int
}

func New(users *userstore.Store, logger *zap.Logger) *Session {
	return &Session{
		users:     users,
		logger:    logger,
		observers: make(map[int]func(string)),
	}
}

// SignIn runs the provider and, on success, ensures a user record exists
// for the returned id before switching the session to it. A failed record
// lookup or create leaves the session as it was.
func (s *Session) SignIn(ctx context.Context, p Provider) (string, error) {
	profile, err := p.SignIn(ctx)
	if err != nil {
		return "", err
	}
	if profile.ID == "" {
		return "", apperr.Invalid("id", "provider returned no user id")
	}

	if err := s.ensureUser(ctx, profile); err != nil {
		return "", err
	}

	s.transition(profile.ID)
	s.logger.Info("signed in", zap.String("user_id", profile.ID))
	return profile.ID, nil
}

// ensureUser creates the user record on first sign-in. The read and the
// write are separate calls, so two first sign-ins racing for the same id
// both write; the second simply replaces the first with equal data.
func (s *Session) ensureUser(ctx context.Context, p Profile) error {
	_, err := s.users.Get(ctx, p.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return err
	}
	u := userstore.NewUser(p.DisplayName, p.Email, p.ProfilePicture)
	if err := s.users.Post(ctx, p.ID, u); err != nil {
		return err
	}
	s.logger.Info("created user record", zap.String("user_id", p.ID))
	return nil
}

// SignOut clears the session. Signing out while signed out is a no-op.
func (s *Session) SignOut(ctx context.Context) error {
	prev := s.CurrentUserID()
	s.transition("")
	if prev != "" {
		s.logger.Info("signed out", zap.String("user_id", prev))
	}
	return nil
}

// CurrentUserID returns the signed-in id, or "".
func (s *Session) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// OnAuthStateChanged calls fn with the current id right away and again
// after every change. The returned func stops delivery.
func (s *Session) OnAuthStateChanged(fn func(userID string)) (unsubscribe func()) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	current := s.userID
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) transition(userID string) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.userID = userID
	fns := make([]func(string), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}
