package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// ServiceRepository persists community service records.
type ServiceRepository struct {
	DB *sql.DB
}

// NewServiceRepository creates a ServiceRepository over db.
func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{DB: db}
}

const serviceColumns = `id, name, place, address, caregiver_rut, date, status, notes, created_at, updated_at`

// Get loads a service record by id.
func (r *ServiceRepository) Get(ctx context.Context, id int) (*models.ServiceRecord, error) {
	var s models.ServiceRecord
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Place, &s.Address, &s.CaregiverRUT, &s.Date, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Insert persists a new service record and assigns the generated id.
func (r *ServiceRepository) Insert(ctx context.Context, s *models.ServiceRecord) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO services (name, place, address, caregiver_rut, date, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, s.Name, s.Place, s.Address, s.CaregiverRUT, s.Date, s.Status, s.Notes).
			Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	})
}

// Update persists the mutable service fields.
func (r *ServiceRepository) Update(ctx context.Context, s *models.ServiceRecord) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE services
			SET name = $1, place = $2, address = $3, caregiver_rut = $4, date = $5, status = $6, notes = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`, s.Name, s.Place, s.Address, s.CaregiverRUT, s.Date, s.Status, s.Notes, s.ID).Scan(&s.UpdatedAt)
	})
}

// Delete removes a service record by id.
func (r *ServiceRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, "services", "id", id)
}

// Exists reports whether a service record with the given id exists.
func (r *ServiceRepository) Exists(ctx context.Context, id int) (bool, error) {
	return rowExists(ctx, r.DB, "services", "id", id)
}

// List returns a page of services matching the filter plus the total
// match count, ordered by date descending.
func (r *ServiceRepository) List(ctx context.Context, f ProgramFilter, limit, offset int) ([]models.ServiceRecord, int, error) {
	where := ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR caregiver_rut = $2)`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM services`+where, f.Name, f.CaregiverRUT).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services`+where+` ORDER BY date DESC NULLS LAST, id LIMIT $3 OFFSET $4`,
		f.Name, f.CaregiverRUT, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []models.ServiceRecord
	for rows.Next() {
		var s models.ServiceRecord
		if err := rows.Scan(&s.ID, &s.Name, &s.Place, &s.Address, &s.CaregiverRUT, &s.Date, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, total, rows.Err()
}
