package brainwriting

import "errors"

var (
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSheetNotFound indicates the sheet doesn't exist in the session.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrInvalidInput indicates invalid request input.
	ErrInvalidInput = errors.New("invalid brainwriting input")
	// ErrSessionFull indicates the session has reached its participant capacity.
	ErrSessionFull = errors.New("session is full")
	// ErrSheetLocked indicates another user currently holds the sheet lock.
	ErrSheetLocked = errors.New("sheet is locked by another user")
	// ErrNotParticipant indicates the user has not joined the session.
	ErrNotParticipant = errors.New("user is not a participant")
	// ErrWrongTurn indicates a write outside the caller's turn.
	ErrWrongTurn = errors.New("not your turn")
	// ErrAlreadyStarted indicates the session already has sheets.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrNotStarted indicates a team session without sheets yet.
	ErrNotStarted = errors.New("session not started")
	// ErrInvalidCell indicates row/col coordinates outside the grid.
	ErrInvalidCell = errors.New("invalid cell coordinates")
	// ErrNotOwner indicates an owner-only operation by a non-owner.
	ErrNotOwner = errors.New("user is not the session owner")
	// ErrInviteInactive indicates the invite link has been disabled.
	ErrInviteInactive = errors.New("invite link is not active")
	// ErrWrongMode indicates an operation not defined for the session's mode.
	ErrWrongMode = errors.New("operation not valid for this usage mode")
)
