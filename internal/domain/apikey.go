package domain

import "time"

// APIKey represents an issued API key with its usage counter.
// The secret key value is generated once at creation and never changes;
// keys are deactivated rather than deleted.
type APIKey struct {
	ID         string    `json:"id" db:"id"`
	Key        string    `json:"key" db:"key"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	UsageCount int       `json:"usage_count" db:"usage_count"`
}

// CreateAPIKeyRequest is the request body for creating an API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}
