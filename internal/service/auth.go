package service

import (
	"context"
	"errors"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/rut"
)

// ErrAuthRequired is the single undifferentiated failure for any token
// problem: missing, malformed, tampered, expired, or pointing at an
// account that no longer exists. The HTTP layer renders it as 401.
var ErrAuthRequired = errors.New("authentication required")

// credentialsMessage is shared by every login failure so callers cannot
// tell whether the RUT or the password was wrong, or whether the RUT
// exists at all.
const credentialsMessage = "incorrect credentials"

// AuthAccountStore is the persistence surface the auth service needs.
type AuthAccountStore interface {
	Get(ctx context.Context, id int) (*models.Account, error)
	GetByRUT(ctx context.Context, rutID string) (*models.Account, error)
	Update(ctx context.Context, a *models.Account) error
}

// AuthService ties login and logout to token issuance and defines what
// "current account" means for the rest of the system.
type AuthService struct {
	accounts AuthAccountStore
	hasher   auth.PasswordHasher
	tokens   *auth.TokenManager
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts AuthAccountStore, hasher auth.PasswordHasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{accounts: accounts, hasher: hasher, tokens: tokens}
}

// LoginResult is returned to a successfully authenticated client.
type LoginResult struct {
	Token     string             `json:"token"`
	Account   models.AccountView `json:"account"`
	ExpiresIn int                `json:"expires_in"`
}

// Login authenticates an operator by RUT and password and issues a bearer
// token carrying a snapshot of the account's identity and level.
func (s *AuthService) Login(ctx context.Context, rawRUT, password string) (*LoginResult, error) {
	if rawRUT == "" || password == "" {
		return nil, apperr.Validation("rut", "rut and password are required")
	}
	normalized, ok := rut.Normalize(rawRUT)
	if !ok {
		return nil, apperr.Validation("rut", "rut must be in XXXXXXX-X or XXXXXXXX-X format")
	}

	account, err := s.accounts.GetByRUT(ctx, normalized)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil, apperr.BusinessRule(credentialsMessage)
		}
		return nil, apperr.Persistence("account lookup failed", err)
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, apperr.BusinessRule(credentialsMessage)
	}

	token, err := s.tokens.Issue(account.ID, account.RUT, account.Level)
	if err != nil {
		return nil, apperr.Persistence("token issuance failed", err)
	}
	return &LoginResult{
		Token:     token,
		Account:   account.View(),
		ExpiresIn: int(s.tokens.TTL() / time.Second),
	}, nil
}

// ResolveCurrent verifies a bearer token and loads the acting account.
// Any failure — bad signature, expiry, or an account deleted after the
// token was issued — yields ErrAuthRequired; a dangling token never
// resolves to a ghost identity.
func (s *AuthService) ResolveCurrent(ctx context.Context, token string) (*models.Account, error) {
	claims, ok := s.tokens.Verify(token)
	if !ok {
		return nil, ErrAuthRequired
	}
	account, err := s.accounts.Get(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil, ErrAuthRequired
		}
		return nil, apperr.Persistence("account lookup failed", err)
	}
	return account, nil
}

// Logout acknowledges a client-side logout. Tokens are stateless and the
// server keeps no revocation list, so an already-issued token stays valid
// until it expires; clients discard it.
func (s *AuthService) Logout() map[string]string {
	return map[string]string{"message": "session closed"}
}

// ChangePassword lets an account change its own password after proving
// knowledge of the current one.
func (s *AuthService) ChangePassword(ctx context.Context, account *models.Account, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("password", "current and new passwords are required")
	}
	if !s.hasher.Verify(current, account.PasswordHash) {
		return apperr.BusinessRule("current password is incorrect")
	}
	if ok, reason := auth.CheckStrength(next); !ok {
		return apperr.Validation("new_password", reason)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperr.Persistence("password hashing failed", err)
	}
	account.PasswordHash = hash
	if err := s.accounts.Update(ctx, account); err != nil {
		return apperr.Persistence("password update failed", err)
	}
	return nil
}
