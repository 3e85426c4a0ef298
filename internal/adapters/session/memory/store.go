package memory

import (
	"context"
	"sync"
	"time"

	"far-fetched/internal/ports/session"
)

type entry struct {
	value   string
	expires time.Time // zero => sin expiry
}

// Store es la implementación in-memory de session.Store (dev/tests).
type Store struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

var _ session.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *Store) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	e, ok := s.data[sessionID+"\x00"+key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *Store) Set(_ context.Context, sessionID, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.data[sessionID+"\x00"+key] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	delete(s.data, sessionID+"\x00"+key)
	s.mu.Unlock()
	return nil
}
