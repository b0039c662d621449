package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// MaintenanceRepository persists maintenance records for centers.
type MaintenanceRepository struct {
	DB *sql.DB
}

// NewMaintenanceRepository creates a MaintenanceRepository over db.
func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{DB: db}
}

const maintenanceColumns = `id, date, center_id, detail, notes, attachments, performed_by, created_at, updated_at`

// Get loads a maintenance record by id.
func (r *MaintenanceRepository) Get(ctx context.Context, id int) (*models.Maintenance, error) {
	var m models.Maintenance
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenances WHERE id = $1`, id).
		Scan(&m.ID, &m.Date, &m.CenterID, &m.Detail, &m.Notes, &m.Attachments, &m.PerformedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Insert persists a new maintenance record and assigns the generated id.
func (r *MaintenanceRepository) Insert(ctx context.Context, m *models.Maintenance) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO maintenances (date, center_id, detail, notes, attachments, performed_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`, m.Date, m.CenterID, m.Detail, m.Notes, m.Attachments, m.PerformedBy).
			Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	})
}

// Update persists the mutable maintenance fields.
func (r *MaintenanceRepository) Update(ctx context.Context, m *models.Maintenance) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE maintenances
			SET date = $1, center_id = $2, detail = $3, notes = $4, attachments = $5, performed_by = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING updated_at
		`, m.Date, m.CenterID, m.Detail, m.Notes, m.Attachments, m.PerformedBy, m.ID).Scan(&m.UpdatedAt)
	})
}

// Delete removes a maintenance record by id.
func (r *MaintenanceRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, "maintenances", "id", id)
}

// MaintenanceFilter narrows maintenance listings.
type MaintenanceFilter struct {
	CenterID int
}

// List returns a page of maintenance records matching the filter plus the
// total match count, ordered by date descending.
func (r *MaintenanceRepository) List(ctx context.Context, f MaintenanceFilter, limit, offset int) ([]models.Maintenance, int, error) {
	where := ` WHERE ($1 = 0 OR center_id = $1)`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM maintenances`+where, f.CenterID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count maintenances: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenances`+where+` ORDER BY date DESC, id LIMIT $2 OFFSET $3`,
		f.CenterID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list maintenances: %w", err)
	}
	defer rows.Close()

	var records []models.Maintenance
	for rows.Next() {
		var m models.Maintenance
		if err := rows.Scan(&m.ID, &m.Date, &m.CenterID, &m.Detail, &m.Notes, &m.Attachments, &m.PerformedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan maintenance: %w", err)
		}
		records = append(records, m)
	}
	return records, total, rows.Err()
}
