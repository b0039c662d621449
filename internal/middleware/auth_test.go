package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/models"
)

type stubResolver struct {
	account *models.Account
	err     error
}

func (s *stubResolver) ResolveCurrent(ctx context.Context, token string) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func okHandler(t *testing.T, want *models.Account) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want != nil {
			account := AccountFromContext(r.Context())
			require.NotNil(t, account, "account missing from context")
			assert.Equal(t, want.ID, account.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestWithAuth(t *testing.T) {
	account := &models.Account{ID: 1, RUT: "12345678-5", Level: auth.LevelSupport}

	tests := []struct {
		name         string
		header       string
		resolver     *stubResolver
		expectedCode int
	}{
		{"no header", "", &stubResolver{account: account}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &stubResolver{account: account}, http.StatusUnauthorized},
		{"bare bearer", "Bearer ", &stubResolver{account: account}, http.StatusUnauthorized},
		{"resolver rejects", "Bearer bad-token", &stubResolver{err: errors.New("authentication required")}, http.StatusUnauthorized},
		{"valid token", "Bearer good-token", &stubResolver{account: account}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var want *models.Account
			if tt.expectedCode == http.StatusNoContent {
				want = account
			}
			wrapped := WithAuth(tt.resolver)(okHandler(t, want))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/elders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusUnauthorized {
				var payload map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
				assert.Equal(t, false, payload["success"])
				assert.Equal(t, "authentication required", payload["error"])
			}
		})
	}
}

func TestRequireLevel(t *testing.T) {
	tests := []struct {
		name         string
		level        auth.Level
		min          auth.Level
		expectedCode int
	}{
		{"below minimum", auth.LevelSupport, auth.LevelManager, http.StatusForbidden},
		{"at minimum", auth.LevelManager, auth.LevelManager, http.StatusNoContent},
		{"above minimum", auth.LevelAdmin, auth.LevelManager, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &models.Account{ID: 1, Level: tt.level}
			wrapped := WithAuth(&stubResolver{account: account})(
				RequireLevel(tt.min)(okHandler(t, nil)))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("DELETE", "/api/accounts/2", nil)
			req.Header.Set("Authorization", "Bearer good-token")
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusForbidden {
				var payload map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
				assert.Equal(t, "insufficient permissions", payload["error"])
			}
		})
	}
}

func TestRequireLevel_WithoutAuth(t *testing.T) {
	// A gate reached without WithAuth in front must fail closed.
	wrapped := RequireLevel(auth.LevelSupport)(okHandler(t, nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/elders", nil)
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name         string
		level        auth.Level
		capability   auth.Capability
		expectedCode int
	}{
		{"support writes field data", auth.LevelSupport, auth.CapWriteFieldData, http.StatusNoContent},
		{"support denied record writes", auth.LevelSupport, auth.CapWriteRecords, http.StatusForbidden},
		{"manager denied vital deletes", auth.LevelManager, auth.CapDeleteVital, http.StatusForbidden},
		{"admin deletes vital records", auth.LevelAdmin, auth.CapDeleteVital, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &models.Account{ID: 1, Level: tt.level}
			wrapped := WithAuth(&stubResolver{account: account})(
				RequireCapability(tt.capability)(okHandler(t, nil)))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/participations", nil)
			req.Header.Set("Authorization", "Bearer good-token")
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}
