package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// ElderRepository persists elderly beneficiary records, keyed by RUT.
type ElderRepository struct {
	DB *sql.DB
}

// NewElderRepository creates an ElderRepository over db.
func NewElderRepository(db *sql.DB) *ElderRepository {
	return &ElderRepository{DB: db}
}

const elderColumns = `rut, first_name, last_name, gender, birth_date, address, sector, phone, email, disability_card, created_at, updated_at`

func scanElder(scan func(...any) error) (*models.Elder, error) {
	var e models.Elder
	err := scan(&e.RUT, &e.FirstName, &e.LastName, &e.Gender, &e.BirthDate,
		&e.Address, &e.Sector, &e.Phone, &e.Email, &e.DisabilityCard, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get loads an elder by normalized RUT.
func (r *ElderRepository) Get(ctx context.Context, rutID string) (*models.Elder, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+elderColumns+` FROM elders WHERE rut = $1`, rutID)
	e, err := scanElder(row.Scan)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

// Insert persists a new elder and reads back the audit timestamps.
func (r *ElderRepository) Insert(ctx context.Context, e *models.Elder) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO elders (rut, first_name, last_name, gender, birth_date, address, sector, phone, email, disability_card)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`, e.RUT, e.FirstName, e.LastName, e.Gender, e.BirthDate, e.Address, e.Sector, e.Phone, e.Email, e.DisabilityCard).
			Scan(&e.CreatedAt, &e.UpdatedAt)
	})
}

// Update persists the mutable elder fields.
func (r *ElderRepository) Update(ctx context.Context, e *models.Elder) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE elders
			SET first_name = $1, last_name = $2, gender = $3, birth_date = $4, address = $5,
				sector = $6, phone = $7, email = $8, disability_card = $9, updated_at = NOW()
			WHERE rut = $10
			RETURNING updated_at
		`, e.FirstName, e.LastName, e.Gender, e.BirthDate, e.Address, e.Sector, e.Phone, e.Email, e.DisabilityCard, e.RUT).
			Scan(&e.UpdatedAt)
	})
}

// Delete removes an elder by RUT.
func (r *ElderRepository) Delete(ctx context.Context, rutID string) error {
	return deleteByID(ctx, r.DB, "elders", "rut", rutID)
}

// Exists reports whether an elder with the given RUT exists.
func (r *ElderRepository) Exists(ctx context.Context, rutID string) (bool, error) {
	return rowExists(ctx, r.DB, "elders", "rut", rutID)
}

// CheckUnique reports whether no elder row already uses the RUT.
func (r *ElderRepository) CheckUnique(ctx context.Context, rutID string) (bool, error) {
	return checkUnique(ctx, r.DB, "elders", "rut", "rut", rutID, nil)
}

// ElderFilter narrows elder listings.
type ElderFilter struct {
	Name   string
	RUT    string
	Sector string
}

// List returns a page of elders matching the filter plus the total match
// count, ordered by last name.
func (r *ElderRepository) List(ctx context.Context, f ElderFilter, limit, offset int) ([]models.Elder, int, error) {
	where := ` WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR rut ILIKE '%' || $2 || '%')
		AND ($3 = '' OR sector ILIKE '%' || $3 || '%')`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM elders`+where, f.Name, f.RUT, f.Sector).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count elders: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+elderColumns+` FROM elders`+where+` ORDER BY last_name, first_name LIMIT $4 OFFSET $5`,
		f.Name, f.RUT, f.Sector, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list elders: %w", err)
	}
	defer rows.Close()

	var elders []models.Elder
	for rows.Next() {
		e, err := scanElder(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan elder: %w", err)
		}
		elders = append(elders, *e)
	}
	return elders, total, rows.Err()
}
