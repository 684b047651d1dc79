package storage

import (
	"context"

	"github.com/snapgate/snapgate/internal/domain"
)

// Storage is the persistent record of issued API keys.
// Implementations must be safe for concurrent use. Authenticate must not
// lose usage-count increments under concurrent calls for the same key.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// CreateAPIKey persists a new API key record.
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error

	// ListAPIKeys returns all stored keys, newest first.
	ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error)

	// Authenticate looks up an active key by its secret value, increments
	// its usage counter, and returns the updated record. Returns
	// domain.ErrInvalidKey when no active key matches.
	Authenticate(ctx context.Context, key string) (*domain.APIKey, error)

	// DeactivateAPIKey marks a key inactive. Records are never deleted.
	DeactivateAPIKey(ctx context.Context, id string) error
}
