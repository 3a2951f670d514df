package memory

import (
	"context"
	"sync"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]domain.Preferences
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]domain.Preferences)}
}

func (s *PreferenceStore) Get(_ context.Context, visitorID string) (domain.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[visitorID]; ok {
		return p, nil
	}
	return domain.DefaultPreferences(), nil
}

func (s *PreferenceStore) Save(_ context.Context, visitorID string, p domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[visitorID] = p
	return nil
}

// IdempotencyStore maps scoped idempotency keys to resource ids for the
// lifetime of the process. An empty id marks a claim still in flight.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]string)}
}

func (s *IdempotencyStore) Claim(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + "|" + key
	if id, ok := s.keys[k]; ok {
		return id, false, nil
	}
	s.keys[k] = ""
	return "", true, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, scope, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[scope+"|"+key] = id
	return nil
}

// Release forgets key only while it is still a bare claim.
func (s *IdempotencyStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + "|" + key
	if s.keys[k] == "" {
		delete(s.keys, k)
	}
	return nil
}
