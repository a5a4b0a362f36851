package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/studyrooms-api/internal/store"
)

// SQLSTATE codes this package translates.
const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	checkViolationCode       = "23514"
	notNullViolationCode     = "23502"
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// mapping is how one SQLSTATE is reported to callers.
type mapping struct {
	sentinel error
	detail   func(*pgconn.PgError) string
}

var mappings = map[string]mapping{
	uniqueViolationCode: {store.ErrDuplicate, func(e *pgconn.PgError) string {
		return "unique constraint " + e.ConstraintName
	}},
	foreignKeyViolationCode: {store.ErrInvalidEntity, func(e *pgconn.PgError) string {
		return "foreign key violation (" + e.ConstraintName + ")"
	}},
	checkViolationCode: {store.ErrInvalidEntity, func(e *pgconn.PgError) string {
		return "check constraint violation (" + e.ConstraintName + ")"
	}},
	notNullViolationCode: {store.ErrInvalidEntity, func(e *pgconn.PgError) string {
		return "not null violation (" + e.ColumnName + ")"
	}},
	serializationFailureCode: {store.ErrRetryable, func(*pgconn.PgError) string { return "serialization failure" }},
	deadlockDetectedCode:     {store.ErrRetryable, func(*pgconn.PgError) string { return "deadlock detected" }},
}

// dbError is a driver error translated to a store sentinel. Its message
// names the constraint but never echoes the server message, which can carry
// row values. The driver error stays reachable through errors.As.
type dbError struct {
	sentinel error
	detail   string
	cause    error
}

func (e *dbError) Error() string   { return e.sentinel.Error() + ": " + e.detail }
func (e *dbError) Unwrap() []error { return []error{e.sentinel, e.cause} }

// MapError translates database errors to store sentinels. Errors without a
// translation are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &dbError{sentinel: store.ErrNotFound, detail: "no rows", cause: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	m, ok := mappings[pgErr.Code]
	if !ok {
		return err
	}
	return &dbError{sentinel: m.sentinel, detail: m.detail(pgErr), cause: err}
}

// IsUniqueViolation reports whether err carries a unique violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsForeignKeyViolation reports whether err carries a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// CheckRowsAffected returns store.ErrNotFound when result touched no rows.
func CheckRowsAffected(result sql.Result, entityName string) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if entityName == "" {
		return store.ErrNotFound
	}
	return fmt.Errorf("%w: %s not found", store.ErrNotFound, entityName)
}
