package repository

import "github.com/kutahiru/idea-labo-sub002/internal/repoerr"

// The sentinel values live in the leaf package repoerr so domain services can
// match on them without importing this package (which references domain types).
// They are re-exported here so repository.ErrX keeps working for callers.
var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = repoerr.ErrNotFound

	// ErrConflict is returned when a uniqueness or concurrency check fails
	ErrConflict = repoerr.ErrConflict

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = repoerr.ErrForeignKeyViolation

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = repoerr.ErrInvalidInput
)
