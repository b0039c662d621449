// Package service implements the business logic for every entity module.
// Each service supplies the validation, construction and field-update
// hooks to the generic crud template, and exposes listing and any
// entity-specific operations on top.
package service

import (
	"strings"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/rut"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// parseDate parses an ISO date string, returning a validation error naming
// the field on failure.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validationf(field, "%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

// requireString checks a required string field is non-blank.
func requireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validationf(field, "%s is required", field)
	}
	return nil
}

// maxLen checks an optional length cap.
func maxLen(field, value string, limit int) error {
	if len(value) > limit {
		return apperr.Validationf(field, "%s must not exceed %d characters", field, limit)
	}
	return nil
}

// normalizeRUT normalizes a RUT and verifies its checksum, returning a
// validation error naming the field otherwise.
func normalizeRUT(field, raw string) (string, error) {
	normalized, ok := rut.Normalize(raw)
	if !ok {
		return "", apperr.Validationf(field, "%s must be a RUT in XXXXXXX-X or XXXXXXXX-X format", field)
	}
	if !rut.Valid(normalized) {
		return "", apperr.Validationf(field, "%s has an invalid verifier digit", field)
	}
	return normalized, nil
}

// validEmail is a light-weight structural check, mirroring the one the
// HTTP clients already enforce.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// checkOptionalEmail validates an optional email field.
func checkOptionalEmail(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if err := maxLen(field, *value, 150); err != nil {
		return err
	}
	if !validEmail(*value) {
		return apperr.Validationf(field, "%s must be a valid email address", field)
	}
	return nil
}

// checkOptionalPhone validates an optional phone field: digits, spaces and
// common separators only.
func checkOptionalPhone(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if err := maxLen(field, *value, 20); err != nil {
		return err
	}
	for _, r := range *value {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')':
		default:
			return apperr.Validationf(field, "%s has an invalid phone format", field)
		}
	}
	return nil
}
