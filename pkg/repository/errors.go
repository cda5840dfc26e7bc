package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTableCode = "42P01"

// MapError translates database errors to domain errors.
// sql.ErrNoRows becomes notFoundErr; a missing-table error (PostgreSQL 42P01)
// becomes ErrSchemaMissing. Other errors are returned unchanged.
func MapError(err error, notFoundErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTableCode {
		return errors.Join(ErrSchemaMissing, err)
	}

	return err
}

// ErrSchemaMissing indicates the target table does not exist; run migrations first.
var ErrSchemaMissing = errors.New("schema missing: run migrations")
