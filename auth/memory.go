package auth

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is a UserStore backed by a map. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*UserRecord
}

// NewMemoryStore returns a store holding users.
func NewMemoryStore(users ...UserRecord) *MemoryStore {
	s := &MemoryStore{users: make(map[string]*UserRecord, len(users))}
	for _, u := range users {
		s.users[u.Username] = u.clone()
	}
	return s
}

// Put adds or replaces a user.
func (s *MemoryStore) Put(_ context.Context, u UserRecord) error {
	if u.Username == "" {
		return errors.New("username cannot be empty")
	}
	s.mu.Lock()
	s.users[u.Username] = u.clone()
	s.mu.Unlock()
	return nil
}

// LookupByIdentifier returns a copy of the stored user.
func (s *MemoryStore) LookupByIdentifier(_ context.Context, identifier string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[identifier]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.clone(), nil
}
