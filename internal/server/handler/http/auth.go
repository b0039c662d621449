package http

import (
	"context"
	"net/http"

	"github.com/dpm-muni/dpm-backend/internal/middleware"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Login authenticates by RUT and password and issues a bearer token.
	Login(ctx context.Context, rutID, password string) (*service.LoginResult, error)
	// Logout acknowledges a client-side logout.
	Logout() map[string]string
	// ChangePassword changes the acting account's own password.
	ChangePassword(ctx context.Context, account *models.Account, current, next string) error
}

// AuthHandler handles HTTP requests for login, logout and the session
// introspection endpoints.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	RUT      string `json:"rut"`
	Password string `json:"password"`
}

// Login handles login requests. It expects a JSON body with "rut" and
// "password". Every failure mode is the same 422 so the response never
// reveals whether the RUT exists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.AuthService.Login(r.Context(), req.RUT, req.Password)
	if err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "login successful", result)
}

// Logout acknowledges a logout. Tokens are stateless; the client is
// expected to discard its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, h.AuthService.Logout()["message"], nil)
}

// Me returns the authenticated account with its permission summary.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondData(w, http.StatusOK, account.View())
}

// ChangePasswordRequest represents the JSON payload for a password
// change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword lets the authenticated account change its own password
// after proving knowledge of the current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.AuthService.ChangePassword(r.Context(), account, req.CurrentPassword, req.NewPassword); err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "password updated", nil)
}
