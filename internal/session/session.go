// Package session persists the authenticated user's token and identity
// between runs of the dashboard.
package session

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Storage keys. Token and user live under separate keys but are always
// written and cleared together.
const (
	keyToken = "token"
	keyUser  = "user"
)

// User is the identity stored alongside the token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session couples a bearer token with the user it belongs to.
type Session struct {
	Token string
	User  User
}

// Storage is a string key-value store for client state.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store holds the current session in memory and mirrors it into Storage.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	current *Session
}

// NewStore creates a session store backed by the given storage. A persisted
// session is rehydrated only when both the token and the user record are
// present and the record parses.
func NewStore(storage Storage) *Store {
	s := &Store{storage: storage}

	token, err := storage.Get(keyToken)
	if err != nil || token == "" {
		return s
	}
	raw, err := storage.Get(keyUser)
	if err != nil || raw == "" {
		return s
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return s
	}
	s.current = &Session{Token: token, User: user}
	return s
}

// Current returns the active session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

// Token returns the active bearer token, or empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Login stores the token and user together. If persisting either key fails
// the other is rolled back and the previous state kept.
func (s *Store) Login(token string, user User) error {
	if token == "" {
		return fmt.Errorf("login: empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("login: marshaling user: %w", err)
	}

	if err := s.storage.Set(keyToken, token); err != nil {
		return fmt.Errorf("login: persisting token: %w", err)
	}
	if err := s.storage.Set(keyUser, string(raw)); err != nil {
		_ = s.storage.Delete(keyToken)
		return fmt.Errorf("login: persisting user: %w", err)
	}

	s.current = &Session{Token: token, User: user}
	return nil
}

// Logout clears the token and user together. If clearing storage fails the
// in-memory session is kept so the two never diverge.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(keyToken); err != nil {
		return fmt.Errorf("logout: clearing token: %w", err)
	}
	if err := s.storage.Delete(keyUser); err != nil {
		return fmt.Errorf("logout: clearing user: %w", err)
	}
	s.current = nil
	return nil
}
