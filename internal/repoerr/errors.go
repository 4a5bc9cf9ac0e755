// Package repoerr holds the repository sentinel errors in a leaf package so
// both the repository interfaces (which reference domain types) and the domain
// services (which match on these sentinels) can share them without an import
// cycle. The repository package re-exports them under its own name.
package repoerr

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness or concurrency check fails
	ErrConflict = errors.New("conflict: entity already exists or was modified")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
