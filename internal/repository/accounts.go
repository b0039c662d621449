package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpm-muni/dpm-backend/internal/models"
)

// AccountRepository persists operator accounts.
type AccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewAccountRepository creates an AccountRepository over db.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `id, rut, name, password_hash, level`

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.RUT, &a.Name, &a.PasswordHash, &a.Level); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Get loads an account by id.
func (r *AccountRepository) Get(ctx context.Context, id int) (*models.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByRUT loads an account by its normalized RUT.
func (r *AccountRepository) GetByRUT(ctx context.Context, rutID string) (*models.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE rut = $1`, rutID)
	return scanAccount(row)
}

// Insert persists a new account and assigns the generated id.
func (r *AccountRepository) Insert(ctx context.Context, a *models.Account) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO accounts (rut, name, password_hash, level)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, a.RUT, a.Name, a.PasswordHash, a.Level).Scan(&a.ID)
	})
}

// Update persists the mutable account fields.
func (r *AccountRepository) Update(ctx context.Context, a *models.Account) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE accounts SET name = $1, password_hash = $2, level = $3 WHERE id = $4
		`, a.Name, a.PasswordHash, a.Level, a.ID)
		return err
	})
}

// Delete removes an account by id.
func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, "accounts", "id", id)
}

// CheckUnique reports whether no other account has the given value in
// column, excluding excludeID when non-nil.
func (r *AccountRepository) CheckUnique(ctx context.Context, column string, value string, excludeID any) (bool, error) {
	switch column {
	case "rut", "name":
		return checkUnique(ctx, r.DB, "accounts", column, "id", value, excludeID)
	default:
		return false, fmt.Errorf("unknown accounts column %q", column)
	}
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	RUT   string
	Name  string
	Level int
}

// List returns a page of accounts matching the filter plus the total
// match count. Results are ordered by id for stable pagination.
func (r *AccountRepository) List(ctx context.Context, f AccountFilter, limit, offset int) ([]models.Account, int, error) {
	where := ` WHERE ($1 = '' OR rut ILIKE '%' || $1 || '%')
		AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		AND ($3 = 0 OR level = $3)`

	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts`+where, f.RUT, f.Name, f.Level).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts`+where+` ORDER BY id LIMIT $4 OFFSET $5`,
		f.RUT, f.Name, f.Level, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.RUT, &a.Name, &a.PasswordHash, &a.Level); err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

// CountByLevel returns how many accounts exist per level.
func (r *AccountRepository) CountByLevel(ctx context.Context) (map[int]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT level, COUNT(*) FROM accounts GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("count accounts by level: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		counts[level] = n
	}
	return counts, rows.Err()
}
