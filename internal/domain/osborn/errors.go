package osborn

import "errors"

var (
	// ErrNotFound indicates the checklist doesn't exist.
	ErrNotFound = errors.New("checklist not found")
	// ErrNotOwner indicates an operation by someone other than the owner.
	ErrNotOwner = errors.New("user is not the checklist owner")
	// ErrInvalidInput indicates invalid checklist input.
	ErrInvalidInput = errors.New("invalid checklist input")
	// ErrUnknownLens indicates a lens outside the closed nine-lens set.
	ErrUnknownLens = errors.New("unknown checklist lens")
)
