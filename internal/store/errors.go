package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the root of every "not found" error below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness rule,
	// such as a second overview for the same lesson.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned for rows the database refused on
	// constraint grounds, or entities that failed validation before a write.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed marks a transaction that could not complete.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrRetryable marks a transaction aborted by a concurrency conflict.
	// RunInTransaction retries these.
	ErrRetryable = fmt.Errorf("%w: concurrent update conflict", ErrTransactionFailed)

	ErrLessonNotFound   = fmt.Errorf("%w: lesson", ErrNotFound)
	ErrArtifactNotFound = fmt.Errorf("%w: room artifact", ErrNotFound)
	ErrClaimNotFound    = fmt.Errorf("%w: generation claim", ErrNotFound)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is a uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
