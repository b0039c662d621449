// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/models"
)

type ctxKey string

const accountKey ctxKey = "account"

// AccountResolver turns a bearer token into the authenticated account.
type AccountResolver interface {
	ResolveCurrent(ctx context.Context, token string) (*models.Account, error)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   false,
		"error":     message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// WithAuth authenticates every request via the Authorization header.
//
// The header must carry "Bearer <token>". The resolved account is stored
// in the request context for downstream handlers and level gates. Any
// missing, malformed, invalid or expired token yields 401 without
// distinguishing the failure reason.
func WithAuth(resolver AccountResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			account, err := resolver.ResolveCurrent(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext extracts the authenticated account from the request
// context. Returns nil if the request was not authenticated.
func AccountFromContext(ctx context.Context) *models.Account {
	if account, ok := ctx.Value(accountKey).(*models.Account); ok {
		return account
	}
	return nil
}

// RequireLevel rejects requests whose account is below the minimum
// permission level. It must run after WithAuth.
func RequireLevel(min auth.Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if account.Level < min {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability rejects requests whose account level does not grant
// the capability. It must run after WithAuth.
func RequireCapability(c auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !account.Level.Allowed(c) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
