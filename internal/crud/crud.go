// Package crud implements the generic create/fetch/update/delete template
// every entity service specializes through a small hooks contract. The
// template enforces the validate→build→persist and fetch→validate→mutate
// →persist sequences uniformly and translates storage failures into the
// shared error taxonomy before they reach the HTTP layer.
package crud

import (
	"context"
	"errors"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
)

// Sentinel errors stores return so the template can translate integrity
// violations into business-rule errors instead of leaking raw driver
// errors. A duplicate that slips past pre-commit validation (the benign
// TOCTOU window between the uniqueness check and commit) still surfaces as
// ErrDuplicate from the store.
var (
	// ErrNotFound means no row exists for the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint was violated at commit.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference means a foreign key constraint was violated at commit.
	ErrReference = errors.New("invalid reference")
)

// Store is the persistence contract the template requires. Each operation
// is a single transaction in the implementation; Insert assigns generated
// keys back onto the entity.
type Store[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (*T, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id ID) error
}

// Hooks is the per-entity specialization contract. C is the create input,
// P the partial-update patch. ValidateCreate and ValidateUpdate may return
// validation errors for malformed input or business-rule errors for
// uniqueness and referential violations detected before commit.
// ApplyUpdate must only touch fields present in the patch; absent fields
// stay untouched.
type Hooks[T any, C any, P any] interface {
	// EntityName is the human-readable name used in error messages.
	EntityName() string
	ValidateCreate(ctx context.Context, in C) error
	Build(ctx context.Context, in C) (*T, error)
	ValidateUpdate(ctx context.Context, in P, existing *T) error
	ApplyUpdate(existing *T, in P)
}

// DeleteGuard is an optional extension of Hooks for entities that restrict
// deletion. Hooks without it allow every delete.
type DeleteGuard[T any] interface {
	ValidateDelete(ctx context.Context, existing *T) error
}

// Template runs the shared CRUD algorithm for one entity type.
type Template[T any, ID comparable, C any, P any] struct {
	store Store[T, ID]
	hooks Hooks[T, C, P]
}

// New builds a Template from a store and the entity's hooks.
func New[T any, ID comparable, C any, P any](store Store[T, ID], hooks Hooks[T, C, P]) *Template[T, ID, C, P] {
	return &Template[T, ID, C, P]{store: store, hooks: hooks}
}

// Create validates the input, builds the entity and persists it.
func (t *Template[T, ID, C, P]) Create(ctx context.Context, in C) (*T, error) {
	if err := t.hooks.ValidateCreate(ctx, in); err != nil {
		return nil, err
	}
	entity, err := t.hooks.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := t.store.Insert(ctx, entity); err != nil {
		return nil, t.translate(err)
	}
	return entity, nil
}

// Fetch loads the entity by primary key. Every other operation routes
// through this single chokepoint, so a missing row always produces the
// same "<Entity> not found" business-rule error.
func (t *Template[T, ID, C, P]) Fetch(ctx context.Context, id ID) (*T, error) {
	entity, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, t.translate(err)
	}
	return entity, nil
}

// Update fetches the entity, validates the patch against it, applies only
// the fields present in the patch, and persists the result.
func (t *Template[T, ID, C, P]) Update(ctx context.Context, id ID, in P) (*T, error) {
	entity, err := t.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.hooks.ValidateUpdate(ctx, in, entity); err != nil {
		return nil, err
	}
	t.hooks.ApplyUpdate(entity, in)
	if err := t.store.Update(ctx, entity); err != nil {
		return nil, t.translate(err)
	}
	return entity, nil
}

// Delete fetches the entity, runs its delete guard if it has one, and
// removes it.
func (t *Template[T, ID, C, P]) Delete(ctx context.Context, id ID) error {
	entity, err := t.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if guard, ok := t.hooks.(DeleteGuard[T]); ok {
		if err := guard.ValidateDelete(ctx, entity); err != nil {
			return err
		}
	}
	if err := t.store.Delete(ctx, id); err != nil {
		return t.translate(err)
	}
	return nil
}

// translate maps store sentinels into taxonomy errors. Errors already in
// the taxonomy pass through; anything else is a persistence failure.
func (t *Template[T, ID, C, P]) translate(err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrNotFound):
		return apperr.BusinessRulef("%s not found", t.hooks.EntityName())
	case errors.Is(err, ErrDuplicate):
		return apperr.BusinessRulef("%s already exists", t.hooks.EntityName())
	case errors.Is(err, ErrReference):
		return apperr.BusinessRule("referenced record does not exist")
	default:
		return apperr.Persistence("storage operation failed", err)
	}
}
