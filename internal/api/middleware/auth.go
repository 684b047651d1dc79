package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/snapgate/snapgate/internal/domain"
	"github.com/snapgate/snapgate/internal/storage"
)

type contextKey string

const APIKeyContextKey contextKey = "api_key"

// respondError writes a JSON error body, keeping the content type
// consistent with the handlers' responses.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&domain.APIError{Code: status, Message: message})
}

// Auth creates authentication middleware. It requires a "Bearer <key>"
// Authorization header, resolves the key through the store (which also
// records the usage), and attaches the record to the request context.
func Auth(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			apiKey := strings.TrimPrefix(authHeader, "Bearer ")
			if apiKey == "" {
				respondError(w, http.StatusUnauthorized, "empty API key")
				return
			}

			record, err := store.Authenticate(r.Context(), apiKey)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidKey) {
					respondError(w, http.StatusUnauthorized, "invalid or inactive API key")
					return
				}
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyContextKey, record)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKeyFromContext retrieves the API key from the request context.
func GetAPIKeyFromContext(ctx context.Context) *domain.APIKey {
	key, _ := ctx.Value(APIKeyContextKey).(*domain.APIKey)
	return key
}
