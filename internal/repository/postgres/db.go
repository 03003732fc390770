package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"travel/internal/repository"
)

// Postgres error codes mapped to repository errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	exclusionViolation  = "23P01"
	invalidTextInput    = "22P02"
)

//go:embed schema.sql
var schema string

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// mapWriteError translates constraint violations into repository errors.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
	case exclusionViolation:
		return repository.ErrOverlap
	case foreignKeyViolation:
		return fmt.Errorf("%w: %s", repository.ErrInvalidReference, pqErr.Constraint)
	case invalidTextInput:
		return fmt.Errorf("%w: %s", repository.ErrInvalidReference, pqErr.Message)
	default:
		return err
	}
}

// mapReadError translates sql.ErrNoRows into repository.ErrNotFound. An id
// that is not a valid UUID cannot match any row, so it is not found either.
func mapReadError(err error) error {
	if errors.Is(err, sql.ErrNoRows) || isInvalidInput(err) {
		return repository.ErrNotFound
	}
	return err
}

// isInvalidInput reports whether Postgres rejected a parameter's text form,
// e.g. a non-UUID string compared with a UUID column.
func isInvalidInput(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextInput
}
