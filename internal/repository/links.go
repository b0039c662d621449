package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// ParticipationKey is the composite primary key of a participation row.
type ParticipationKey struct {
	ElderRUT  string
	Kind      models.ProgramKind
	ProgramID int
}

// ParticipationRepository persists elder participation links.
type ParticipationRepository struct {
	DB *sql.DB
}

// NewParticipationRepository creates a ParticipationRepository over db.
func NewParticipationRepository(db *sql.DB) *ParticipationRepository {
	return &ParticipationRepository{DB: db}
}

// Get loads a participation row by composite key.
func (r *ParticipationRepository) Get(ctx context.Context, key ParticipationKey) (*models.Participation, error) {
	var p models.Participation
	err := r.DB.QueryRowContext(ctx, `
		SELECT elder_rut, kind, program_id, date, created_at
		FROM participations
		WHERE elder_rut = $1 AND kind = $2 AND program_id = $3
	`, key.ElderRUT, key.Kind, key.ProgramID).
		Scan(&p.ElderRUT, &p.Kind, &p.ProgramID, &p.Date, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Insert persists a new participation link.
func (r *ParticipationRepository) Insert(ctx context.Context, p *models.Participation) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO participations (elder_rut, kind, program_id, date)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, p.ElderRUT, p.Kind, p.ProgramID, p.Date).Scan(&p.CreatedAt)
	})
}

// Update persists the participation date, the only mutable field.
func (r *ParticipationRepository) Update(ctx context.Context, p *models.Participation) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE participations SET date = $1
			WHERE elder_rut = $2 AND kind = $3 AND program_id = $4
		`, p.Date, p.ElderRUT, p.Kind, p.ProgramID)
		return err
	})
}

// Delete removes a participation link by composite key.
func (r *ParticipationRepository) Delete(ctx context.Context, key ParticipationKey) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM participations WHERE elder_rut = $1 AND kind = $2 AND program_id = $3
		`, key.ElderRUT, key.Kind, key.ProgramID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("participation %v: %w", key, sql.ErrNoRows)
		}
		return nil
	})
}

// ListByElder returns every participation link for an elder.
func (r *ParticipationRepository) ListByElder(ctx context.Context, elderRUT string) ([]models.Participation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT elder_rut, kind, program_id, date, created_at
		FROM participations WHERE elder_rut = $1 ORDER BY date DESC
	`, elderRUT)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var links []models.Participation
	for rows.Next() {
		var p models.Participation
		if err := rows.Scan(&p.ElderRUT, &p.Kind, &p.ProgramID, &p.Date, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		links = append(links, p)
	}
	return links, rows.Err()
}

// AssignmentKey is the composite primary key of an assignment row.
type AssignmentKey struct {
	CaregiverRUT string
	Kind         models.ProgramKind
	ProgramID    int
}

// AssignmentRepository persists caregiver management links.
type AssignmentRepository struct {
	DB *sql.DB
}

// NewAssignmentRepository creates an AssignmentRepository over db.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// Get loads an assignment row by composite key.
func (r *AssignmentRepository) Get(ctx context.Context, key AssignmentKey) (*models.Assignment, error) {
	var a models.Assignment
	err := r.DB.QueryRowContext(ctx, `
		SELECT caregiver_rut, kind, program_id, date, created_at
		FROM assignments
		WHERE caregiver_rut = $1 AND kind = $2 AND program_id = $3
	`, key.CaregiverRUT, key.Kind, key.ProgramID).
		Scan(&a.CaregiverRUT, &a.Kind, &a.ProgramID, &a.Date, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Insert persists a new assignment link.
func (r *AssignmentRepository) Insert(ctx context.Context, a *models.Assignment) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO assignments (caregiver_rut, kind, program_id, date)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, a.CaregiverRUT, a.Kind, a.ProgramID, a.Date).Scan(&a.CreatedAt)
	})
}

// Update persists the assignment date, the only mutable field.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE assignments SET date = $1
			WHERE caregiver_rut = $2 AND kind = $3 AND program_id = $4
		`, a.Date, a.CaregiverRUT, a.Kind, a.ProgramID)
		return err
	})
}

// Delete removes an assignment link by composite key.
func (r *AssignmentRepository) Delete(ctx context.Context, key AssignmentKey) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM assignments WHERE caregiver_rut = $1 AND kind = $2 AND program_id = $3
		`, key.CaregiverRUT, key.Kind, key.ProgramID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("assignment %v: %w", key, sql.ErrNoRows)
		}
		return nil
	})
}

// ListByCaregiver returns every assignment link for a caregiver.
func (r *AssignmentRepository) ListByCaregiver(ctx context.Context, caregiverRUT string) ([]models.Assignment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT caregiver_rut, kind, program_id, date, created_at
		FROM assignments WHERE caregiver_rut = $1 ORDER BY date DESC
	`, caregiverRUT)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var links []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.CaregiverRUT, &a.Kind, &a.ProgramID, &a.Date, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		links = append(links, a)
	}
	return links, rows.Err()
}
