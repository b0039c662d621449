// Package http provides the HTTP handlers and routing for the
// senior-services API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	payload["timestamp"] = time.Now().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondData writes a success envelope carrying data.
func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

// respondMessage writes a success envelope carrying a message and
// optionally data.
func respondMessage(w http.ResponseWriter, status int, message string, data any) {
	payload := map[string]any{"success": true, "message": message}
	if data != nil {
		payload["data"] = data
	}
	writeJSON(w, status, payload)
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// renderError maps a service error onto the wire. Validation failures
// carry the offending field when known; anything unclassified is a bare
// 500 so internals never leak.
func renderError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrAuthRequired) {
		respondError(w, http.StatusUnauthorized, service.ErrAuthRequired.Error())
		return
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		payload := map[string]any{"success": false, "error": appErr.Message}
		if appErr.Field != "" {
			payload["field"] = appErr.Field
		}
		writeJSON(w, appErr.HTTPStatus(), payload)
		return
	}
	respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON parses the request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pageParams holds the parsed pagination query parameters.
type pageParams struct {
	Page    int
	PerPage int
}

func (p pageParams) limit() int  { return p.PerPage }
func (p pageParams) offset() int { return (p.Page - 1) * p.PerPage }

// parsePageParams reads page and per_page from the query string,
// clamping per_page to the maximum and both to at least 1.
func parsePageParams(r *http.Request) pageParams {
	p := pageParams{Page: 1, PerPage: defaultPerPage}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Page = n
		}
	}
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PerPage = n
		}
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// respondPage writes a paginated success envelope. items must be a
// non-nil slice so empty pages serialize as [] rather than null.
func respondPage(w http.ResponseWriter, items any, total int, p pageParams) {
	pages := total / p.PerPage
	if total%p.PerPage != 0 {
		pages++
	}
	respondData(w, http.StatusOK, map[string]any{
		"items": items,
		"pagination": map[string]any{
			"page":     p.Page,
			"per_page": p.PerPage,
			"total":    total,
			"pages":    pages,
			"has_next": p.Page < pages,
			"has_prev": p.Page > 1,
		},
	})
}

// urlParamInt parses a numeric chi URL parameter.
func urlParamInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}
