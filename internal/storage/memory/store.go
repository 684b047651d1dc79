package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/snapgate/snapgate/internal/domain"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu      sync.RWMutex
	apiKeys map[string]*domain.APIKey // key: id
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		apiKeys: make(map[string]*domain.APIKey),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apiKeys[key.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, existing := range s.apiKeys {
		if existing.Key == key.Key {
			return domain.ErrAlreadyExists
		}
	}

	clone := *key
	s.apiKeys[key.ID] = &clone
	return nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]*domain.APIKey, 0, len(s.apiKeys))
	for _, key := range s.apiKeys {
		clone := *key
		keys = append(keys, &clone)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

func (s *Store) Authenticate(ctx context.Context, key string) (*domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.apiKeys {
		if record.Key == key && record.IsActive {
			record.UsageCount++
			clone := *record
			return &clone, nil
		}
	}
	return nil, domain.ErrInvalidKey
}

func (s *Store) DeactivateAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.apiKeys[id]
	if !exists {
		return domain.ErrNotFound
	}
	record.IsActive = false
	return nil
}
