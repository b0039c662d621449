package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// fakeAccountFullStore implements AccountStore for the account service
// tests. Uniqueness answers are keyed by column name.
type fakeAccountFullStore struct {
	fakeAccountStore
	unique   map[string]bool
	counts   map[int]int
	inserted *models.Account
	deleted  bool
}

func (s *fakeAccountFullStore) Insert(ctx context.Context, a *models.Account) error {
	s.inserted = a
	a.ID = 10
	return nil
}

func (s *fakeAccountFullStore) Delete(ctx context.Context, id int) error {
	s.deleted = true
	return nil
}

func (s *fakeAccountFullStore) CheckUnique(ctx context.Context, column, value string, excludeID any) (bool, error) {
	if s.unique == nil {
		return true, nil
	}
	free, ok := s.unique[column]
	if !ok {
		return true, nil
	}
	return free, nil
}

func (s *fakeAccountFullStore) List(ctx context.Context, f repository.AccountFilter, limit, offset int) ([]models.Account, int, error) {
	return nil, 0, nil
}

func (s *fakeAccountFullStore) CountByLevel(ctx context.Context) (map[int]int, error) {
	return s.counts, nil
}

func validCreateInput() CreateAccountInput {
	return CreateAccountInput{
		RUT:      "12.345.678-5",
		Name:     "new operator",
		Password: "secret-pw1",
		Level:    2,
	}
}

func TestAccountCreate(t *testing.T) {
	store := &fakeAccountFullStore{}
	svc := NewAccountService(store, fakeHasher{})

	account, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.RUT != "12345678-5" {
		t.Errorf("expected normalized rut, got %q", account.RUT)
	}
	if account.PasswordHash != "hashed:secret-pw1" {
		t.Errorf("password must be stored hashed, got %q", account.PasswordHash)
	}
	if account.Level != auth.LevelManager || account.ID != 10 {
		t.Errorf("unexpected account: %+v", account)
	}
}

func TestAccountCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateAccountInput)
		field  string
	}{
		{"missing rut", func(in *CreateAccountInput) { in.RUT = "" }, "rut"},
		{"bad checksum", func(in *CreateAccountInput) { in.RUT = "12345678-0" }, "rut"},
		{"malformed rut", func(in *CreateAccountInput) { in.RUT = "abc" }, "rut"},
		{"weak password", func(in *CreateAccountInput) { in.Password = "short" }, "password"},
		{"digits only password", func(in *CreateAccountInput) { in.Password = "12345678" }, "password"},
		{"level too high", func(in *CreateAccountInput) { in.Level = 4 }, "level"},
		{"level zero", func(in *CreateAccountInput) { in.Level = 0 }, "level"},
		{"missing name", func(in *CreateAccountInput) { in.Name = "" }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeAccountFullStore{}
			svc := NewAccountService(store, fakeHasher{})
			in := validCreateInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperr.Error, got %v", err)
			}
			if appErr.Kind != apperr.KindValidation || appErr.Field != tt.field {
				t.Errorf("got kind=%v field=%q; want validation on %q", appErr.Kind, appErr.Field, tt.field)
			}
			if store.inserted != nil {
				t.Errorf("Insert must not run on invalid input")
			}
		})
	}
}

func TestAccountCreate_DuplicateRUT(t *testing.T) {
	store := &fakeAccountFullStore{unique: map[string]bool{"rut": false}}
	svc := NewAccountService(store, fakeHasher{})

	_, err := svc.Create(context.Background(), validCreateInput())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "account already exists with this rut" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAccountUpdate_PartialPatch(t *testing.T) {
	existing := testAccount()
	store := &fakeAccountFullStore{
		fakeAccountStore: fakeAccountStore{
			getFn: func(ctx context.Context, id int) (*models.Account, error) {
				return existing, nil
			},
		},
	}
	svc := NewAccountService(store, fakeHasher{})

	level := 3
	updated, err := svc.Update(context.Background(), existing.ID, UpdateAccountInput{Level: &level})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Level != auth.LevelAdmin {
		t.Errorf("level not updated: %+v", updated)
	}
	if updated.Name != "operator" || updated.PasswordHash != "hashed:secret-pw1" {
		t.Errorf("absent patch fields must stay untouched: %+v", updated)
	}
}

func TestAccountDelete_SelfForbidden(t *testing.T) {
	current := testAccount()
	store := &fakeAccountFullStore{
		fakeAccountStore: fakeAccountStore{
			getFn: func(ctx context.Context, id int) (*models.Account, error) {
				return current, nil
			},
		},
	}
	svc := NewAccountService(store, fakeHasher{})

	err := svc.Delete(context.Background(), current.ID, current)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "an account cannot delete itself" {
		t.Errorf("unexpected error: %v", err)
	}
	if store.deleted {
		t.Errorf("self-delete must not reach the store")
	}
}

func TestAccountDelete_Other(t *testing.T) {
	current := testAccount()
	other := &models.Account{ID: 2, RUT: "11111111-1", Name: "other", Level: auth.LevelSupport}
	store := &fakeAccountFullStore{
		fakeAccountStore: fakeAccountStore{
			getFn: func(ctx context.Context, id int) (*models.Account, error) {
				return other, nil
			},
		},
	}
	svc := NewAccountService(store, fakeHasher{})

	if err := svc.Delete(context.Background(), other.ID, current); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.deleted {
		t.Errorf("delete did not reach the store")
	}
}

func TestAccountResetPassword(t *testing.T) {
	existing := testAccount()
	store := &fakeAccountFullStore{
		fakeAccountStore: fakeAccountStore{
			getFn: func(ctx context.Context, id int) (*models.Account, error) {
				return existing, nil
			},
		},
	}
	svc := NewAccountService(store, fakeHasher{})

	account, err := svc.ResetPassword(context.Background(), existing.ID, "fresh-pw99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.PasswordHash != "hashed:fresh-pw99" {
		t.Errorf("hash not replaced: %q", account.PasswordHash)
	}
	if store.updated == nil {
		t.Errorf("account was not persisted")
	}
}

func TestAccountResetPassword_Weak(t *testing.T) {
	store := &fakeAccountFullStore{
		fakeAccountStore: fakeAccountStore{
			getFn: func(ctx context.Context, id int) (*models.Account, error) {
				return testAccount(), nil
			},
		},
	}
	svc := NewAccountService(store, fakeHasher{})

	_, err := svc.ResetPassword(context.Background(), 1, "short")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if store.updated != nil {
		t.Errorf("account must not be persisted on failure")
	}
}

func TestAccountStats(t *testing.T) {
	store := &fakeAccountFullStore{counts: map[int]int{1: 4, 2: 2, 3: 1}}
	svc := NewAccountService(store, fakeHasher{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{"support": 4, "manager": 2, "admin": 1, "total": 7}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%q] = %d; want %d", k, stats[k], v)
		}
	}
}
