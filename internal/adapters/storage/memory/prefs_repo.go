package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"far-fetched/internal/domain/preferences"
)

// prefsRepo es la implementación in-memory de preferences.Repository
// (dev y tests; el router la usa cuando no hay DB_DSN).
type prefsRepo struct {
	mu        sync.RWMutex
	locations map[string]preferences.Location
	types     map[string][]string
}

func NewPrefsRepo() preferences.Repository {
	return &prefsRepo{
		locations: make(map[string]preferences.Location),
		types:     make(map[string][]string),
	}
}

func (r *prefsRepo) GetLocation(ctx context.Context, userID string) (preferences.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc, ok := r.locations[userID]
	if !ok {
		return preferences.Location{}, preferences.ErrNotFound
	}
	return loc, nil
}

func (r *prefsRepo) SaveLocation(ctx context.Context, userID string, loc preferences.Location) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[userID] = loc
	return nil
}

func (r *prefsRepo) GetAnimalTypes(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types, ok := r.types[userID]
	if !ok {
		return nil, preferences.ErrNotFound
	}
	return append([]string(nil), types...), nil
}

func (r *prefsRepo) SaveAnimalTypes(ctx context.Context, userID string, types []string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[userID] = append([]string(nil), types...)
	return nil
}
