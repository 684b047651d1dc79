package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/snapgate/snapgate/internal/domain"
)

func newKey(id, key string) *domain.APIKey {
	return &domain.APIKey{
		ID:        id,
		Key:       key,
		Name:      "test",
		CreatedAt: time.Now(),
		IsActive:  true,
	}
}

func TestAuthenticateIncrements(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAPIKey(ctx, newKey("id-1", "secret-1")); err != nil {
		t.Fatal(err)
	}

	record, err := store.Authenticate(ctx, "secret-1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if record.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", record.UsageCount)
	}
}

func TestAuthenticateConcurrentIncrementsAccumulate(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAPIKey(ctx, newKey("id-1", "secret-1")); err != nil {
		t.Fatal(err)
	}

	const callers = 50
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Authenticate(ctx, "secret-1"); err != nil {
				t.Errorf("Authenticate() error = %v", err)
			}
		}()
	}
	wg.Wait()

	record, err := store.Authenticate(ctx, "secret-1")
	if err != nil {
		t.Fatal(err)
	}
	if record.UsageCount != callers+1 {
		t.Errorf("usage count = %d, want %d", record.UsageCount, callers+1)
	}
}

func TestAuthenticateUnknownKey(t *testing.T) {
	store := New()

	_, err := store.Authenticate(context.Background(), "no-such-key")
	if !errors.Is(err, domain.ErrInvalidKey) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidKey", err)
	}
}

func TestAuthenticateDeactivatedKey(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAPIKey(ctx, newKey("id-1", "secret-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.DeactivateAPIKey(ctx, "id-1"); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Authenticate(ctx, "secret-1"); !errors.Is(err, domain.ErrInvalidKey) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidKey", err)
	}
}

func TestDeactivateUnknownKey(t *testing.T) {
	store := New()

	err := store.DeactivateAPIKey(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeactivateAPIKey() error = %v, want ErrNotFound", err)
	}
}

func TestCreateDuplicateKeyValue(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAPIKey(ctx, newKey("id-1", "secret-1")); err != nil {
		t.Fatal(err)
	}
	err := store.CreateAPIKey(ctx, newKey("id-2", "secret-1"))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("CreateAPIKey() duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	older := newKey("id-1", "secret-1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newKey("id-2", "secret-2")

	if err := store.CreateAPIKey(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateAPIKey(ctx, newer); err != nil {
		t.Fatal(err)
	}

	keys, err := store.ListAPIKeys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("len(keys) = %d, want 2", len(keys))
	}
	if keys[0].ID != "id-2" {
		t.Errorf("first key = %s, want id-2 (newest first)", keys[0].ID)
	}
}
