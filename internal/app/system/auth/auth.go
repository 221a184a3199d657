// Package auth holds the HTTP-side session plumbing: the signed cookie
// that carries the OAuth state across the provider round trip and then the
// signed-in user id, and the middleware that admits only requests whose
// cookie names the user the engine is signed in as.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	stateKey   = "oauth_state"
	stateAtKey = "oauth_state_at"
	nextKey    = "oauth_next"
	userIDKey  = "user_id"

	// stateMaxAge bounds how long a sign-in round trip may take.
	stateMaxAge = 10 * time.Minute

	// sessionMaxAge is the cookie lifetime once signed in.
	sessionMaxAge = 7 * 24 * 60 * 60
)

// ErrStateMismatch is returned by ConsumeState when the callback's state
// does not match the one issued.
var ErrStateMismatch = errors.New("auth: oauth state mismatch")

// SessionManager wraps a gorilla cookie store.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure; over plain http on localhost use secure=false so the
// browser accepts them. SameSite is Lax either way: the provider redirect
// is a top-level GET and still carries the cookie, while cross-site POSTs
// do not.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "slackclone-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(sessionMaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, logger: logger, now: time.Now}, nil
}

// WithClock replaces the time source used for state expiry.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

// Name returns the cookie name.
func (m *SessionManager) Name() string { return m.name }

// IssueState generates a fresh state token, stores it (and the post-login
// destination) in the session cookie, and returns it for the provider URL.
func (m *SessionManager) IssueState(w http.ResponseWriter, r *http.Request, next string) (string, error) {
	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		return "", errors.New("auth: random source unavailable")
	}
	state := base64.RawURLEncoding.EncodeToString(raw)

	sess, err := m.store.Get(r, m.name)
	if err != nil {
		// A cookie signed with an old key decodes as an error but still
		// yields a fresh session we can overwrite.
		m.logger.Debug("session decode failed; starting fresh", zap.Error(err))
	}
	sess.Values[stateKey] = state
	sess.Values[stateAtKey] = m.now().Unix()
	sess.Values[nextKey] = next
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("auth: save session: %w", err)
	}
	return state, nil
}

// ConsumeState checks got against the issued state and removes it so a
// callback URL cannot be replayed. It returns the stored destination.
// A state older than ten minutes does not match.
func (m *SessionManager) ConsumeState(w http.ResponseWriter, r *http.Request, got string) (string, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return "", ErrStateMismatch
	}
	want, _ := sess.Values[stateKey].(string)
	at, _ := sess.Values[stateAtKey].(int64)
	next, _ := sess.Values[nextKey].(string)
	delete(sess.Values, stateKey)
	delete(sess.Values, stateAtKey)
	delete(sess.Values, nextKey)
	if err := sess.Save(r, w); err != nil {
		m.logger.Warn("auth: clear oauth state", zap.Error(err))
	}

	if want == "" || got == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return "", ErrStateMismatch
	}
	if m.now().Sub(time.Unix(at, 0)) > stateMaxAge {
		return "", ErrStateMismatch
	}
	return next, nil
}

// SetUser records userID as the session's signed-in user.
func (m *SessionManager) SetUser(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.logger.Debug("session decode failed; starting fresh", zap.Error(err))
	}
	sess.Values[userIDKey] = userID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	return nil
}

// UserID returns the signed-in user recorded in the request's cookie, or
// "" when there is none or it does not decode.
func (m *SessionManager) UserID(r *http.Request) string {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[userIDKey].(string)
	return id
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.logger.Warn("session decode failed during clear", zap.Error(err))
	}
	sess.Options = &sessions.Options{}
	*sess.Options = *m.store.Options
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		m.logger.Error("auth: clear session", zap.Error(err))
	}
}

// Owns reports whether the request's cookie names current, the user the
// engine is signed in as. It is false whenever current is "".
func (m *SessionManager) Owns(r *http.Request, current string) bool {
	got := m.UserID(r)
	return current != "" && subtle.ConstantTimeCompare([]byte(got), []byte(current)) == 1
}

// RequireSignedIn answers 401 unless the request's cookie names the user
// returned by current.
func (m *SessionManager) RequireSignedIn(current func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Owns(r, current()) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"signed_out","message":"sign in required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
