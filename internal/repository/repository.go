// Package repository provides PostgreSQL persistence for the domain
// entities. Every repository implements the crud.Store contract plus the
// uniqueness checks and filtered listings its service needs. Driver-level
// integrity violations are translated into crud sentinels here, so the
// service layer never sees a raw *pq.Error.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/dpm-muni/dpm-backend/internal/crud"
)

// Postgres error codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver errors onto the crud sentinels. sql.ErrNoRows
// becomes ErrNotFound; unique and foreign-key violations become
// ErrDuplicate and ErrReference. Other errors pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return crud.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %v", crud.ErrDuplicate, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %v", crud.ErrReference, err)
		}
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on error and
// committing otherwise. Commit errors go through translate so a deferred
// constraint violation still surfaces as a crud sentinel.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return translate(err)
	}
	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// checkUnique reports whether no other row in table has column = value.
// excludeID, when non-nil, ignores the row with that primary key so
// update-time checks skip the row being updated. table, column and
// idColumn are repository constants, never user input.
func checkUnique(ctx context.Context, db *sql.DB, table, column, idColumn string, value any, excludeID any) (bool, error) {
	var exists bool
	var err error
	if excludeID != nil {
		query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`, table, column, idColumn)
		err = db.QueryRowContext(ctx, query, value, excludeID).Scan(&exists)
	} else {
		query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`, table, column)
		err = db.QueryRowContext(ctx, query, value).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check unique %s.%s: %w", table, column, err)
	}
	return !exists, nil
}

// rowExists reports whether a row with the given primary key exists.
func rowExists(ctx context.Context, db *sql.DB, table, idColumn string, id any) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`, table, idColumn)
	if err := db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("row exists %s: %w", table, err)
	}
	return exists, nil
}

// deleteByID removes one row by primary key inside a transaction and
// returns crud.ErrNotFound when nothing was deleted.
func deleteByID(ctx context.Context, db *sql.DB, table, idColumn string, id any) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, idColumn), id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return crud.ErrNotFound
		}
		return nil
	})
}
