package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/studyrooms-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       error
		wantDetail string
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound, "no rows"},
		{"unique violation", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "room_artifacts_overview_key"},
			store.ErrDuplicate, "room_artifacts_overview_key"},
		{"foreign key violation", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk_lesson"},
			store.ErrInvalidEntity, "foreign key violation (fk_lesson)"},
		{"check violation", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "chk_room"},
			store.ErrInvalidEntity, "check constraint violation (chk_room)"},
		{"not null violation", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"},
			store.ErrInvalidEntity, "not null violation (title)"},
		{"serialization failure", &pgconn.PgError{Code: serializationFailureCode},
			store.ErrRetryable, "serialization failure"},
		{"deadlock", &pgconn.PgError{Code: deadlockDetectedCode}, store.ErrRetryable, "deadlock detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError(tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), tt.wantDetail)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	assert.NoError(t, MapError(nil))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapError(plain))

	unknown := &pgconn.PgError{Code: "42P01"}
	assert.Equal(t, error(unknown), MapError(unknown))
}

func TestMapErrorHidesServerMessage(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           uniqueViolationCode,
		ConstraintName: "lessons_pkey",
		Message:        "duplicate key value violates unique constraint",
		Detail:         "Key (id)=(4b3f...) already exists.",
	}

	err := MapError(pgErr)

	assert.NotContains(t, err.Error(), "Key (id)")
	var got *pgconn.PgError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, pgErr.Detail, got.Detail)
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.True(t, IsUniqueViolation(MapError(&pgconn.PgError{Code: uniqueViolationCode})))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), "lesson"))

	err := CheckRowsAffected(sqlmock.NewResult(0, 0), "lesson")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "lesson not found")

	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), ""), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(nil, "lesson"))
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), "lesson"))
}
