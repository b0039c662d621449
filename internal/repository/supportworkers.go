package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// SupportWorkerRepository persists support worker records, keyed by RUT.
type SupportWorkerRepository struct {
	DB *sql.DB
}

// NewSupportWorkerRepository creates a SupportWorkerRepository over db.
func NewSupportWorkerRepository(db *sql.DB) *SupportWorkerRepository {
	return &SupportWorkerRepository{DB: db}
}

const supportWorkerColumns = `rut, first_name, last_name, role, center_id, created_at, updated_at`

// Get loads a support worker by normalized RUT.
func (r *SupportWorkerRepository) Get(ctx context.Context, rutID string) (*models.SupportWorker, error) {
	var w models.SupportWorker
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+supportWorkerColumns+` FROM support_workers WHERE rut = $1`, rutID).
		Scan(&w.RUT, &w.FirstName, &w.LastName, &w.Role, &w.CenterID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// Insert persists a new support worker and reads back the audit
// timestamps.
func (r *SupportWorkerRepository) Insert(ctx context.Context, w *models.SupportWorker) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO support_workers (rut, first_name, last_name, role, center_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, w.RUT, w.FirstName, w.LastName, w.Role, w.CenterID).
			Scan(&w.CreatedAt, &w.UpdatedAt)
	})
}

// Update persists the mutable support worker fields.
func (r *SupportWorkerRepository) Update(ctx context.Context, w *models.SupportWorker) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE support_workers
			SET first_name = $1, last_name = $2, role = $3, center_id = $4, updated_at = NOW()
			WHERE rut = $5
			RETURNING updated_at
		`, w.FirstName, w.LastName, w.Role, w.CenterID, w.RUT).Scan(&w.UpdatedAt)
	})
}

// Delete removes a support worker by RUT.
func (r *SupportWorkerRepository) Delete(ctx context.Context, rutID string) error {
	return deleteByID(ctx, r.DB, "support_workers", "rut", rutID)
}

// CheckUnique reports whether no support worker row already uses the RUT.
func (r *SupportWorkerRepository) CheckUnique(ctx context.Context, rutID string) (bool, error) {
	return checkUnique(ctx, r.DB, "support_workers", "rut", "rut", rutID, nil)
}

// SupportWorkerFilter narrows support worker listings.
type SupportWorkerFilter struct {
	Name     string
	CenterID int
}

// List returns a page of support workers matching the filter plus the
// total match count, ordered by last name.
func (r *SupportWorkerRepository) List(ctx context.Context, f SupportWorkerFilter, limit, offset int) ([]models.SupportWorker, int, error) {
	where := ` WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
		AND ($2 = 0 OR center_id = $2)`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM support_workers`+where, f.Name, f.CenterID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count support workers: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+supportWorkerColumns+` FROM support_workers`+where+` ORDER BY last_name NULLS LAST, first_name LIMIT $3 OFFSET $4`,
		f.Name, f.CenterID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list support workers: %w", err)
	}
	defer rows.Close()

	var workers []models.SupportWorker
	for rows.Next() {
		var w models.SupportWorker
		if err := rows.Scan(&w.RUT, &w.FirstName, &w.LastName, &w.Role, &w.CenterID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan support worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, total, rows.Err()
}
