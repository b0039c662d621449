package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dpm-muni/dpm-backend/internal/middleware"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

// AccountsService defines the interface for account management
// operations required by the HTTP handlers.
type AccountsService interface {
	Create(ctx context.Context, in service.CreateAccountInput) (*models.Account, error)
	Get(ctx context.Context, id int) (*models.Account, error)
	Update(ctx context.Context, id int, in service.UpdateAccountInput) (*models.Account, error)
	// Delete removes an account; the acting account is passed so the
	// self-deletion ban can be enforced.
	Delete(ctx context.Context, id int, current *models.Account) error
	List(ctx context.Context, f repository.AccountFilter, limit, offset int) ([]models.Account, int, error)
	ResetPassword(ctx context.Context, id int, password string) (*models.Account, error)
	Stats(ctx context.Context) (map[string]int, error)
}

// AccountsHandler handles HTTP requests for operator account management.
// All of its routes are gated behind the admin tier.
type AccountsHandler struct {
	Service AccountsService
}

// List handles GET /api/accounts with rut, name and level filters.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.AccountFilter{
		RUT:  q.Get("rut"),
		Name: q.Get("name"),
	}
	if raw := q.Get("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "level must be a number")
			return
		}
		f.Level = level
	}
	p := parsePageParams(r)
	accounts, total, err := h.Service.List(r.Context(), f, p.limit(), p.offset())
	if err != nil {
		renderError(w, err)
		return
	}
	views := make([]models.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, accounts[i].View())
	}
	respondPage(w, views, total, p)
}

// Create handles POST /api/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAccountInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, err := h.Service.Create(r.Context(), in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusCreated, account.View())
}

// Get handles GET /api/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	account, err := h.Service.Get(r.Context(), id)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, account.View())
}

// Update handles PUT /api/accounts/{id} with a partial body. The route
// is open to managers, but changing a permission level stays an admin
// operation.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	var in service.UpdateAccountInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Level != nil {
		current := middleware.AccountFromContext(r.Context())
		if current == nil || !current.Level.IsAdmin() {
			respondError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
	}
	account, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, account.View())
}

// Delete handles DELETE /api/accounts/{id}. Self-deletion is rejected in
// the service layer.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	current := middleware.AccountFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), id, current); err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "account deleted", nil)
}

// ResetPasswordRequest represents the JSON payload for an administrative
// password reset.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword handles PUT /api/accounts/{id}/password. Unlike the
// self-service change, it does not require the current password.
func (h *AccountsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, err := h.Service.ResetPassword(r.Context(), id, req.Password)
	if err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "password reset", account.View())
}

// Stats handles GET /api/accounts/stats with per-level counts.
func (h *AccountsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
