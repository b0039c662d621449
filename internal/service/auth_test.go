package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
)

// fakeAccountStore is a hand-rolled AuthAccountStore with per-test
// behavior set through function fields.
type fakeAccountStore struct {
	getFn      func(ctx context.Context, id int) (*models.Account, error)
	getByRUTFn func(ctx context.Context, rutID string) (*models.Account, error)
	updateFn   func(ctx context.Context, a *models.Account) error
	updated    *models.Account
}

func (s *fakeAccountStore) Get(ctx context.Context, id int) (*models.Account, error) {
	return s.getFn(ctx, id)
}

func (s *fakeAccountStore) GetByRUT(ctx context.Context, rutID string) (*models.Account, error) {
	return s.getByRUTFn(ctx, rutID)
}

func (s *fakeAccountStore) Update(ctx context.Context, a *models.Account) error {
	s.updated = a
	if s.updateFn != nil {
		return s.updateFn(ctx, a)
	}
	return nil
}

// fakeHasher treats hashes as "hashed:" + password.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(password, hash string) bool { return hash == "hashed:"+password }

func newTestAuthService(store *fakeAccountStore) *AuthService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(store, fakeHasher{}, tokens)
}

func testAccount() *models.Account {
	return &models.Account{
		ID:           1,
		RUT:          "12345678-5",
		Name:         "operator",
		PasswordHash: "hashed:secret-pw1",
		Level:        auth.LevelManager,
	}
}

func TestLogin_Success(t *testing.T) {
	store := &fakeAccountStore{
		getByRUTFn: func(ctx context.Context, rutID string) (*models.Account, error) {
			if rutID != "12345678-5" {
				t.Errorf("expected normalized rut, got %q", rutID)
			}
			return testAccount(), nil
		},
	}
	svc := newTestAuthService(store)

	// Punctuated input must normalize to the stored RUT.
	result, err := svc.Login(context.Background(), "12.345.678-5", "secret-pw1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Errorf("expected a token")
	}
	if result.Account.RUT != "12345678-5" || result.Account.Level != int(auth.LevelManager) {
		t.Errorf("unexpected account view: %+v", result.Account)
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("expected expires_in 3600, got %d", result.ExpiresIn)
	}
}

// Wrong password and unknown RUT must produce the identical message so a
// probe cannot tell registered RUTs apart.
func TestLogin_UniformFailureMessage(t *testing.T) {
	tests := []struct {
		name     string
		rut      string
		password string
		store    *fakeAccountStore
	}{
		{
			name:     "wrong password",
			rut:      "12345678-5",
			password: "not-the-pw1",
			store: &fakeAccountStore{
				getByRUTFn: func(ctx context.Context, rutID string) (*models.Account, error) {
					return testAccount(), nil
				},
			},
		},
		{
			name:     "unknown rut",
			rut:      "11111111-1",
			password: "secret-pw1",
			store: &fakeAccountStore{
				getByRUTFn: func(ctx context.Context, rutID string) (*models.Account, error) {
					return nil, crud.ErrNotFound
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(tt.store)
			_, err := svc.Login(context.Background(), tt.rut, tt.password)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperr.Error, got %v", err)
			}
			if appErr.Message != "incorrect credentials" {
				t.Errorf("message = %q; want the uniform failure message", appErr.Message)
			}
			if appErr.Kind != apperr.KindBusinessRule {
				t.Errorf("kind = %v; want business rule", appErr.Kind)
			}
		})
	}
}

func TestLogin_Validation(t *testing.T) {
	svc := newTestAuthService(&fakeAccountStore{})

	tests := []struct {
		name     string
		rut      string
		password string
	}{
		{"empty rut", "", "secret-pw1"},
		{"empty password", "12345678-5", ""},
		{"malformed rut", "not-a-rut", "secret-pw1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.rut, tt.password)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestResolveCurrent(t *testing.T) {
	account := testAccount()
	store := &fakeAccountStore{
		getByRUTFn: func(ctx context.Context, rutID string) (*models.Account, error) {
			return account, nil
		},
		getFn: func(ctx context.Context, id int) (*models.Account, error) {
			if id != account.ID {
				t.Errorf("expected lookup of id %d, got %d", account.ID, id)
			}
			return account, nil
		},
	}
	svc := newTestAuthService(store)

	result, err := svc.Login(context.Background(), account.RUT, "secret-pw1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	resolved, err := svc.ResolveCurrent(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ID != account.ID {
		t.Errorf("resolved wrong account: %+v", resolved)
	}
}

func TestResolveCurrent_Failures(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		svc := newTestAuthService(&fakeAccountStore{})
		if _, err := svc.ResolveCurrent(context.Background(), "not.a.token"); !errors.Is(err, ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
	})

	t.Run("account deleted after issuance", func(t *testing.T) {
		store := &fakeAccountStore{
			getByRUTFn: func(ctx context.Context, rutID string) (*models.Account, error) {
				return testAccount(), nil
			},
			getFn: func(ctx context.Context, id int) (*models.Account, error) {
				return nil, crud.ErrNotFound
			},
		}
		svc := newTestAuthService(store)
		result, err := svc.Login(context.Background(), "12345678-5", "secret-pw1")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if _, err := svc.ResolveCurrent(context.Background(), result.Token); !errors.Is(err, ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
	})
}

func TestChangePassword(t *testing.T) {
	store := &fakeAccountStore{}
	svc := newTestAuthService(store)
	account := testAccount()

	err := svc.ChangePassword(context.Background(), account, "secret-pw1", "brand-new-pw2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.PasswordHash != "hashed:brand-new-pw2" {
		t.Errorf("hash not replaced: %q", account.PasswordHash)
	}
	if store.updated == nil {
		t.Errorf("account was not persisted")
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	store := &fakeAccountStore{}
	svc := newTestAuthService(store)

	err := svc.ChangePassword(context.Background(), testAccount(), "wrong-pw1", "brand-new-pw2")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "current password is incorrect" {
		t.Errorf("unexpected error: %v", err)
	}
	if store.updated != nil {
		t.Errorf("account must not be persisted on failure")
	}
}

func TestChangePassword_WeakNew(t *testing.T) {
	svc := newTestAuthService(&fakeAccountStore{})

	err := svc.ChangePassword(context.Background(), testAccount(), "secret-pw1", "short")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	svc := newTestAuthService(&fakeAccountStore{})
	if msg := svc.Logout(); msg["message"] != "session closed" {
		t.Errorf("unexpected logout payload: %v", msg)
	}
}
