package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// CaregiverRepository persists caregiver records, keyed by RUT.
type CaregiverRepository struct {
	DB *sql.DB
}

// NewCaregiverRepository creates a CaregiverRepository over db.
func NewCaregiverRepository(db *sql.DB) *CaregiverRepository {
	return &CaregiverRepository{DB: db}
}

const caregiverColumns = `rut, first_name, last_name, email, phone, birth_date, created_at, updated_at`

// Get loads a caregiver by normalized RUT.
func (r *CaregiverRepository) Get(ctx context.Context, rutID string) (*models.Caregiver, error) {
	var c models.Caregiver
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+caregiverColumns+` FROM caregivers WHERE rut = $1`, rutID).
		Scan(&c.RUT, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.BirthDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Insert persists a new caregiver and reads back the audit timestamps.
func (r *CaregiverRepository) Insert(ctx context.Context, c *models.Caregiver) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO caregivers (rut, first_name, last_name, email, phone, birth_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`, c.RUT, c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate).
			Scan(&c.CreatedAt, &c.UpdatedAt)
	})
}

// Update persists the mutable caregiver fields.
func (r *CaregiverRepository) Update(ctx context.Context, c *models.Caregiver) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE caregivers
			SET first_name = $1, last_name = $2, email = $3, phone = $4, birth_date = $5, updated_at = NOW()
			WHERE rut = $6
			RETURNING updated_at
		`, c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate, c.RUT).
			Scan(&c.UpdatedAt)
	})
}

// Delete removes a caregiver by RUT.
func (r *CaregiverRepository) Delete(ctx context.Context, rutID string) error {
	return deleteByID(ctx, r.DB, "caregivers", "rut", rutID)
}

// Exists reports whether a caregiver with the given RUT exists.
func (r *CaregiverRepository) Exists(ctx context.Context, rutID string) (bool, error) {
	return rowExists(ctx, r.DB, "caregivers", "rut", rutID)
}

// CheckUnique reports whether no caregiver row already uses the RUT.
func (r *CaregiverRepository) CheckUnique(ctx context.Context, rutID string) (bool, error) {
	return checkUnique(ctx, r.DB, "caregivers", "rut", "rut", rutID, nil)
}

// CaregiverFilter narrows caregiver listings.
type CaregiverFilter struct {
	Name string
	RUT  string
}

// List returns a page of caregivers matching the filter plus the total
// match count, ordered by last name.
func (r *CaregiverRepository) List(ctx context.Context, f CaregiverFilter, limit, offset int) ([]models.Caregiver, int, error) {
	where := ` WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR rut ILIKE '%' || $2 || '%')`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM caregivers`+where, f.Name, f.RUT).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count caregivers: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+caregiverColumns+` FROM caregivers`+where+` ORDER BY last_name, first_name LIMIT $3 OFFSET $4`,
		f.Name, f.RUT, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list caregivers: %w", err)
	}
	defer rows.Close()

	var caregivers []models.Caregiver
	for rows.Next() {
		var c models.Caregiver
		if err := rows.Scan(&c.RUT, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.BirthDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan caregiver: %w", err)
		}
		caregivers = append(caregivers, c)
	}
	return caregivers, total, rows.Err()
}
