package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// ActivityRepository persists activity records.
type ActivityRepository struct {
	DB *sql.DB
}

// NewActivityRepository creates an ActivityRepository over db.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

const programColumns = `id, name, start_date, end_date, caregiver_rut, notes, created_at, updated_at`

// Get loads an activity by id.
func (r *ActivityRepository) Get(ctx context.Context, id int) (*models.Activity, error) {
	var a models.Activity
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM activities WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.StartDate, &a.EndDate, &a.CaregiverRUT, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Insert persists a new activity and assigns the generated id.
func (r *ActivityRepository) Insert(ctx context.Context, a *models.Activity) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO activities (name, start_date, end_date, caregiver_rut, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, a.Name, a.StartDate, a.EndDate, a.CaregiverRUT, a.Notes).
			Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	})
}

// Update persists the mutable activity fields.
func (r *ActivityRepository) Update(ctx context.Context, a *models.Activity) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE activities
			SET name = $1, start_date = $2, end_date = $3, caregiver_rut = $4, notes = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING updated_at
		`, a.Name, a.StartDate, a.EndDate, a.CaregiverRUT, a.Notes, a.ID).Scan(&a.UpdatedAt)
	})
}

// Delete removes an activity by id.
func (r *ActivityRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, "activities", "id", id)
}

// Exists reports whether an activity with the given id exists.
func (r *ActivityRepository) Exists(ctx context.Context, id int) (bool, error) {
	return rowExists(ctx, r.DB, "activities", "id", id)
}

// ProgramFilter narrows activity, workshop and service listings.
type ProgramFilter struct {
	Name         string
	CaregiverRUT string
}

// List returns a page of activities matching the filter plus the total
// match count, ordered by start date descending.
func (r *ActivityRepository) List(ctx context.Context, f ProgramFilter, limit, offset int) ([]models.Activity, int, error) {
	where := ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR caregiver_rut = $2)`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities`+where, f.Name, f.CaregiverRUT).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+programColumns+` FROM activities`+where+` ORDER BY start_date DESC, id LIMIT $3 OFFSET $4`,
		f.Name, f.CaregiverRUT, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.StartDate, &a.EndDate, &a.CaregiverRUT, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, total, rows.Err()
}

// WorkshopRepository persists workshop records. Workshops share the
// activity row shape but live in their own table.
type WorkshopRepository struct {
	DB *sql.DB
}

// NewWorkshopRepository creates a WorkshopRepository over db.
func NewWorkshopRepository(db *sql.DB) *WorkshopRepository {
	return &WorkshopRepository{DB: db}
}

// Get loads a workshop by id.
func (r *WorkshopRepository) Get(ctx context.Context, id int) (*models.Workshop, error) {
	var w models.Workshop
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM workshops WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.StartDate, &w.EndDate, &w.CaregiverRUT, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// Insert persists a new workshop and assigns the generated id.
func (r *WorkshopRepository) Insert(ctx context.Context, w *models.Workshop) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO workshops (name, start_date, end_date, caregiver_rut, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, w.Name, w.StartDate, w.EndDate, w.CaregiverRUT, w.Notes).
			Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	})
}

// Update persists the mutable workshop fields.
func (r *WorkshopRepository) Update(ctx context.Context, w *models.Workshop) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE workshops
			SET name = $1, start_date = $2, end_date = $3, caregiver_rut = $4, notes = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING updated_at
		`, w.Name, w.StartDate, w.EndDate, w.CaregiverRUT, w.Notes, w.ID).Scan(&w.UpdatedAt)
	})
}

// Delete removes a workshop by id.
func (r *WorkshopRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, "workshops", "id", id)
}

// Exists reports whether a workshop with the given id exists.
func (r *WorkshopRepository) Exists(ctx context.Context, id int) (bool, error) {
	return rowExists(ctx, r.DB, "workshops", "id", id)
}

// List returns a page of workshops matching the filter plus the total
// match count, ordered by start date descending.
func (r *WorkshopRepository) List(ctx context.Context, f ProgramFilter, limit, offset int) ([]models.Workshop, int, error) {
	where := ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR caregiver_rut = $2)`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workshops`+where, f.Name, f.CaregiverRUT).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workshops: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+programColumns+` FROM workshops`+where+` ORDER BY start_date DESC, id LIMIT $3 OFFSET $4`,
		f.Name, f.CaregiverRUT, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list workshops: %w", err)
	}
	defer rows.Close()

	var workshops []models.Workshop
	for rows.Next() {
		var w models.Workshop
		if err := rows.Scan(&w.ID, &w.Name, &w.StartDate, &w.EndDate, &w.CaregiverRUT, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan workshop: %w", err)
		}
		workshops = append(workshops, w)
	}
	return workshops, total, rows.Err()
}
