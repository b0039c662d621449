package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/middleware"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	loginResult       *service.LoginResult
	loginErr          error
	changePasswordErr error
}

func (f *fakeAuthService) Login(ctx context.Context, rutID, password string) (*service.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthService) Logout() map[string]string {
	return map[string]string{"message": "session closed"}
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, account *models.Account, current, next string) error {
	return f.changePasswordErr
}

// fakeResolver implements middleware.AccountResolver.
type fakeResolver struct {
	account *models.Account
}

func (f *fakeResolver) ResolveCurrent(ctx context.Context, token string) (*models.Account, error) {
	if f.account == nil {
		return nil, service.ErrAuthRequired
	}
	return f.account, nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		service       *fakeAuthService
		expectedCode  int
		expectedError string
	}{
		{
			name:          "invalid JSON",
			body:          `not a json`,
			service:       &fakeAuthService{},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "missing fields",
			body:          `{"rut":""}`,
			service:       &fakeAuthService{loginErr: apperr.Validation("rut", "rut and password are required")},
			expectedCode:  http.StatusBadRequest,
			expectedError: "rut and password are required",
		},
		{
			name:          "wrong credentials",
			body:          `{"rut":"12345678-5","password":"nope"}`,
			service:       &fakeAuthService{loginErr: apperr.BusinessRule("incorrect credentials")},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "incorrect credentials",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Login(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			payload := decodeEnvelope(t, rec)
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, tt.expectedError, payload["error"])
			assert.NotEmpty(t, payload["timestamp"])
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &fakeAuthService{loginResult: &service.LoginResult{
		Token:     "token-abc",
		Account:   models.AccountView{ID: 1, RUT: "12345678-5", Name: "operator", Level: 2},
		ExpiresIn: 3600,
	}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(`{"rut":"12345678-5","password":"secret-pw1"}`))
	h := &AuthHandler{AuthService: svc}
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "login successful", payload["message"])

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %T", payload["data"])
	assert.Equal(t, "token-abc", data["token"])
	assert.Equal(t, float64(3600), data["expires_in"])
}

func TestAuthHandler_Me(t *testing.T) {
	account := &models.Account{ID: 1, RUT: "12345678-5", Name: "operator", Level: auth.LevelManager}
	h := &AuthHandler{AuthService: &fakeAuthService{}}
	wrapped := middleware.WithAuth(&fakeResolver{account: account})(http.HandlerFunc(h.Me))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	wrapped.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "12345678-5", data["rut"])
	assert.Equal(t, "manager", data["level_name"])
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := &AuthHandler{AuthService: &fakeAuthService{}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "authentication required", payload["error"])
}

func TestAuthHandler_Logout(t *testing.T) {
	h := &AuthHandler{AuthService: &fakeAuthService{}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "session closed", payload["message"])
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	account := &models.Account{ID: 1, RUT: "12345678-5", Level: auth.LevelSupport}
	h := &AuthHandler{AuthService: &fakeAuthService{}}
	wrapped := middleware.WithAuth(&fakeResolver{account: account})(http.HandlerFunc(h.ChangePassword))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/auth/password", bytes.NewBufferString(`{"current_password":"secret-pw1","new_password":"fresh-pw99"}`))
	req.Header.Set("Authorization", "Bearer token-abc")
	wrapped.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "password updated", payload["message"])
}

func TestAuthHandler_ChangePassword_WrongCurrent(t *testing.T) {
	account := &models.Account{ID: 1, RUT: "12345678-5", Level: auth.LevelSupport}
	h := &AuthHandler{AuthService: &fakeAuthService{
		changePasswordErr: apperr.BusinessRule("current password is incorrect"),
	}}
	wrapped := middleware.WithAuth(&fakeResolver{account: account})(http.HandlerFunc(h.ChangePassword))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/auth/password", bytes.NewBufferString(`{"current_password":"bad","new_password":"fresh-pw99"}`))
	req.Header.Set("Authorization", "Bearer token-abc")
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "current password is incorrect", payload["error"])
}
