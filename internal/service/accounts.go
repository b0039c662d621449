package service

import (
	"context"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// AccountStore is the persistence surface the account service needs.
type AccountStore interface {
	crud.Store[models.Account, int]
	CheckUnique(ctx context.Context, column, value string, excludeID any) (bool, error)
	List(ctx context.Context, f repository.AccountFilter, limit, offset int) ([]models.Account, int, error)
	CountByLevel(ctx context.Context) (map[int]int, error)
}

// CreateAccountInput carries the fields for account creation.
type CreateAccountInput struct {
	RUT      string `json:"rut"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Level    int    `json:"level"`
}

// UpdateAccountInput is a partial update; nil fields are left untouched.
type UpdateAccountInput struct {
	Name     *string `json:"name"`
	Level    *int    `json:"level"`
	Password *string `json:"password"`
}

// AccountService manages operator accounts through the crud template.
type AccountService struct {
	store  AccountStore
	hasher auth.PasswordHasher
	tmpl   *crud.Template[models.Account, int, CreateAccountInput, UpdateAccountInput]
}

// NewAccountService constructs an AccountService; the service itself
// implements the crud hooks for accounts.
func NewAccountService(store AccountStore, hasher auth.PasswordHasher) *AccountService {
	s := &AccountService{store: store, hasher: hasher}
	s.tmpl = crud.New[models.Account, int, CreateAccountInput, UpdateAccountInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *AccountService) EntityName() string { return "account" }

// ValidateCreate implements crud.Hooks. It checks the required fields,
// RUT format and checksum, password policy, permission level range, and
// RUT uniqueness.
func (s *AccountService) ValidateCreate(ctx context.Context, in CreateAccountInput) error {
	if err := requireString("rut", in.RUT); err != nil {
		return err
	}
	if err := requireString("name", in.Name); err != nil {
		return err
	}
	if err := maxLen("name", in.Name, 150); err != nil {
		return err
	}
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return err
	}
	if ok, reason := auth.CheckStrength(in.Password); !ok {
		return apperr.Validation("password", reason)
	}
	if !auth.ValidLevel(in.Level) {
		return apperr.Validation("level", "level must be 1 (support), 2 (manager) or 3 (admin)")
	}
	unique, err := s.store.CheckUnique(ctx, "rut", normalized, nil)
	if err != nil {
		return apperr.Persistence("uniqueness check failed", err)
	}
	if !unique {
		return apperr.BusinessRule("account already exists with this rut")
	}
	unique, err = s.store.CheckUnique(ctx, "name", in.Name, nil)
	if err != nil {
		return apperr.Persistence("uniqueness check failed", err)
	}
	if !unique {
		return apperr.BusinessRule("account already exists with this name")
	}
	return nil
}

// Build implements crud.Hooks. The password hash is set only here,
// through the hashing routine.
func (s *AccountService) Build(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Persistence("password hashing failed", err)
	}
	return &models.Account{
		RUT:          normalized,
		Name:         in.Name,
		PasswordHash: hash,
		Level:        auth.Level(in.Level),
	}, nil
}

// ValidateUpdate implements crud.Hooks for the partial update.
func (s *AccountService) ValidateUpdate(ctx context.Context, in UpdateAccountInput, existing *models.Account) error {
	if in.Name != nil {
		if err := requireString("name", *in.Name); err != nil {
			return err
		}
		if err := maxLen("name", *in.Name, 150); err != nil {
			return err
		}
		if *in.Name != existing.Name {
			unique, err := s.store.CheckUnique(ctx, "name", *in.Name, existing.ID)
			if err != nil {
				return apperr.Persistence("uniqueness check failed", err)
			}
			if !unique {
				return apperr.BusinessRule("account already exists with this name")
			}
		}
	}
	if in.Level != nil && !auth.ValidLevel(*in.Level) {
		return apperr.Validation("level", "level must be 1 (support), 2 (manager) or 3 (admin)")
	}
	if in.Password != nil {
		if ok, reason := auth.CheckStrength(*in.Password); !ok {
			return apperr.Validation("password", reason)
		}
	}
	return nil
}

// ApplyUpdate implements crud.Hooks. Only fields present in the patch are
// touched; the RUT is immutable.
func (s *AccountService) ApplyUpdate(existing *models.Account, in UpdateAccountInput) {
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Level != nil {
		existing.Level = auth.Level(*in.Level)
	}
	if in.Password != nil {
		// Strength was validated; hashing cannot fail below the length cap.
		if hash, err := s.hasher.Hash(*in.Password); err == nil {
			existing.PasswordHash = hash
		}
	}
}

// Create creates an account.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches an account by id.
func (s *AccountService) Get(ctx context.Context, id int) (*models.Account, error) {
	return s.tmpl.Fetch(ctx, id)
}

// Update applies a partial update to an account.
func (s *AccountService) Update(ctx context.Context, id int, in UpdateAccountInput) (*models.Account, error) {
	return s.tmpl.Update(ctx, id, in)
}

// Delete removes an account. An account may never delete itself,
// regardless of its level.
func (s *AccountService) Delete(ctx context.Context, id int, current *models.Account) error {
	if current != nil && current.ID == id {
		return apperr.BusinessRule("an account cannot delete itself")
	}
	return s.tmpl.Delete(ctx, id)
}

// List returns a page of accounts and the total match count.
func (s *AccountService) List(ctx context.Context, f repository.AccountFilter, limit, offset int) ([]models.Account, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

// ResetPassword sets a new password without requiring the old one. The
// HTTP layer gates this behind the admin tier.
func (s *AccountService) ResetPassword(ctx context.Context, id int, password string) (*models.Account, error) {
	account, err := s.tmpl.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok, reason := auth.CheckStrength(password); !ok {
		return nil, apperr.Validation("password", reason)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Persistence("password hashing failed", err)
	}
	account.PasswordHash = hash
	if err := s.store.Update(ctx, account); err != nil {
		return nil, apperr.Persistence("password update failed", err)
	}
	return account, nil
}

// Stats returns the per-level account counts.
func (s *AccountService) Stats(ctx context.Context) (map[string]int, error) {
	counts, err := s.store.CountByLevel(ctx)
	if err != nil {
		return nil, apperr.Persistence("account stats failed", err)
	}
	stats := map[string]int{"total": 0}
	for level, n := range counts {
		stats[auth.Level(level).Name()] = n
		stats["total"] += n
	}
	return stats, nil
}
