package http

import (
	"context"
	"net/http"
)

// CrudService is the service surface a Resource exposes over HTTP.
// T is the entity, ID its key, C and P the create and patch inputs,
// and F the list filter parsed from the query string.
type CrudService[T any, ID comparable, C any, P any, F any] interface {
	Create(ctx context.Context, in C) (*T, error)
	Get(ctx context.Context, id ID) (*T, error)
	Update(ctx context.Context, id ID, in P) (*T, error)
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, f F, limit, offset int) ([]T, int, error)
}

// Resource serves the standard REST verbs for one entity. Entity-specific
// endpoints live in their own handlers alongside it.
type Resource[T any, ID comparable, C any, P any, F any] struct {
	Service CrudService[T, ID, C, P, F]
	// ParseID extracts the entity key from the URL.
	ParseID func(r *http.Request) (ID, error)
	// ParseFilter extracts the list filter from the query string.
	ParseFilter func(r *http.Request) F
}

// Create handles POST /.
func (h *Resource[T, ID, C, P, F]) Create(w http.ResponseWriter, r *http.Request) {
	var in C
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entity, err := h.Service.Create(r.Context(), in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusCreated, entity)
}

// Get handles GET /{id}.
func (h *Resource[T, ID, C, P, F]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	entity, err := h.Service.Get(r.Context(), id)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, entity)
}

// Update handles PUT /{id} with a partial body.
func (h *Resource[T, ID, C, P, F]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	var in P
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entity, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, entity)
}

// Delete handles DELETE /{id}.
func (h *Resource[T, ID, C, P, F]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "record deleted", nil)
}

// List handles GET / with pagination and filters.
func (h *Resource[T, ID, C, P, F]) List(w http.ResponseWriter, r *http.Request) {
	p := parsePageParams(r)
	items, total, err := h.Service.List(r.Context(), h.ParseFilter(r), p.limit(), p.offset())
	if err != nil {
		renderError(w, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	respondPage(w, items, total, p)
}
