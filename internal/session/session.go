package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pantryhub/pantry/internal/models"
)

// ErrEmptyToken is returned when saving an empty token.
var ErrEmptyToken = errors.New("empty token")

// Session holds the bearer token and the fetched user profile for the running
// client. The token is mirrored in Storage; every mutation updates both copies
// before returning.
type Session struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    *models.User

	listenersMu sync.Mutex
	listeners   []func()
}

// New creates a session backed by storage, restoring a previously saved token.
func New(storage Storage) (*Session, error) {
	token, err := storage.Load(TokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return &Session{
		storage: storage,
		token:   token,
	}, nil
}

// SaveToken stores the token in memory and in storage. Contents are not validated.
func (s *Session) SaveToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.token = token
	return nil
}

// Token returns the current token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// SetUser records the profile of the authenticated principal.
func (s *Session) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

// User returns a copy of the current profile, or nil if none was fetched.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAdmin reports whether the fetched profile has admin rights.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin
}

// Logout clears the token, the profile, and the persisted value. The in-memory
// state is cleared even when storage fails, so the client never keeps using a
// token the caller asked to drop.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	if err := s.storage.Delete(TokenKey); err != nil {
		return fmt.Errorf("failed to remove persisted token: %w", err)
	}
	return nil
}

// OnExpired registers fn to run whenever the backend rejects the session.
func (s *Session) OnExpired(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Expire clears the session and notifies OnExpired subscribers in
// registration order.
func (s *Session) Expire() error {
	err := s.Logout()

	s.listenersMu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return err
}
