package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// CenterRepository persists community center records.
type CenterRepository struct {
	DB *sql.DB
}

// NewCenterRepository creates a CenterRepository over db.
func NewCenterRepository(db *sql.DB) *CenterRepository {
	return &CenterRepository{DB: db}
}

const centerColumns = `id, name, address, sector, created_at, updated_at`

// Get loads a center by id.
func (r *CenterRepository) Get(ctx context.Context, id int) (*models.CommunityCenter, error) {
	var c models.CommunityCenter
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+centerColumns+` FROM community_centers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Address, &c.Sector, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Insert persists a new center and assigns the generated id.
func (r *CenterRepository) Insert(ctx context.Context, c *models.CommunityCenter) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO community_centers (name, address, sector)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`, c.Name, c.Address, c.Sector).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	})
}

// Update persists the mutable center fields.
func (r *CenterRepository) Update(ctx context.Context, c *models.CommunityCenter) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			UPDATE community_centers
			SET name = $1, address = $2, sector = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at
		`, c.Name, c.Address, c.Sector, c.ID).Scan(&c.UpdatedAt)
	})
}

// Delete removes a center by id.
func (r *CenterRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, "community_centers", "id", id)
}

// Exists reports whether a center with the given id exists.
func (r *CenterRepository) Exists(ctx context.Context, id int) (bool, error) {
	return rowExists(ctx, r.DB, "community_centers", "id", id)
}

// CheckUniqueName reports whether no other center uses the name,
// excluding excludeID when non-nil.
func (r *CenterRepository) CheckUniqueName(ctx context.Context, name string, excludeID any) (bool, error) {
	return checkUnique(ctx, r.DB, "community_centers", "name", "id", name, excludeID)
}

// CenterFilter narrows center listings.
type CenterFilter struct {
	Name    string
	Sector  string
	Address string
}

// List returns a page of centers matching the filter plus the total match
// count, ordered by name.
func (r *CenterRepository) List(ctx context.Context, f CenterFilter, limit, offset int) ([]models.CommunityCenter, int, error) {
	where := ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR sector ILIKE '%' || $2 || '%')
		AND ($3 = '' OR address ILIKE '%' || $3 || '%')`

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM community_centers`+where, f.Name, f.Sector, f.Address).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count centers: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+centerColumns+` FROM community_centers`+where+` ORDER BY name LIMIT $4 OFFSET $5`,
		f.Name, f.Sector, f.Address, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list centers: %w", err)
	}
	defer rows.Close()

	var centers []models.CommunityCenter
	for rows.Next() {
		var c models.CommunityCenter
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Sector, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan center: %w", err)
		}
		centers = append(centers, c)
	}
	return centers, total, rows.Err()
}

// Sectors returns the distinct non-empty sector names across centers.
func (r *CenterRepository) Sectors(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT sector FROM community_centers WHERE sector IS NOT NULL AND sector <> '' ORDER BY sector`)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var sectors []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}
