package mandalart

import "errors"

var (
	// ErrNotFound indicates the mandalart doesn't exist.
	ErrNotFound = errors.New("mandalart not found")
	// ErrNotOwner indicates an operation by someone other than the owner.
	ErrNotOwner = errors.New("user is not the mandalart owner")
	// ErrInvalidInput indicates invalid mandalart input.
	ErrInvalidInput = errors.New("invalid mandalart input")
	// ErrInvalidCell indicates block/position outside the 9x9 grid.
	ErrInvalidCell = errors.New("invalid mandalart cell")
)
