package brainwriting

import (
	"context"
	"time"

	"github.com/kutahiru/idea-labo-sub002/internal/events"
)

// SessionRepository provides persistence for sessions, participants, sheets
// and inputs. Lock mutations must be conditional updates at the storage layer
// so concurrent acquirers are linearized per sheet.
type SessionRepository interface {
	Create(ctx context.Context, tenantID string, sess *Session) error
	Get(ctx context.Context, tenantID, id string) (*Session, error)
	GetByInviteToken(ctx context.Context, tenantID, token string) (*Session, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]Session, error)
	UpdateFlags(ctx context.Context, tenantID, id string, inviteActive, resultsPublic bool) error

	// AddParticipant returns repository.ErrConflict when the (session, user)
	// pair already exists.
	AddParticipant(ctx context.Context, tenantID string, p *Participant) error
	// ListParticipants returns participants ordered by join time.
	ListParticipants(ctx context.Context, tenantID, sessionID string) ([]Participant, error)

	// CreateSheets inserts all sheets in one transaction. It returns
	// repository.ErrConflict when the session already has sheets.
	CreateSheets(ctx context.Context, tenantID, sessionID string, sheets []Sheet) error
	GetSheet(ctx context.Context, tenantID, sheetID string) (*Sheet, error)
	// ListSheets returns sheets ordered by sequence number.
	ListSheets(ctx context.Context, tenantID, sessionID string) ([]Sheet, error)

	// TryAcquireSheet grants the lock iff the sheet is unlocked as of now, or
	// already held by userID (refresh). Reports whether the grant happened.
	TryAcquireSheet(ctx context.Context, tenantID, sheetID, userID string, expiresAt, now time.Time) (bool, error)
	// ReleaseSheet clears the lock iff userID holds it. Releasing a sheet held
	// by someone else, or not held at all, is a no-op.
	ReleaseSheet(ctx context.Context, tenantID, sheetID, userID string) error
	// ReassignSheet hands the lock from one holder to the next in a single
	// conditional update. Reports whether the handoff happened.
	ReassignSheet(ctx context.Context, tenantID, sheetID, fromUserID, toUserID string, expiresAt time.Time) (bool, error)
	// ClearExpiredLocks nulls out holder and expiry on every sheet of the
	// session whose expiry has passed.
	ClearExpiredLocks(ctx context.Context, tenantID, sessionID string, now time.Time) error

	// UpsertInput writes a cell, replacing any previous content at the same
	// (sheet, row, col).
	UpsertInput(ctx context.Context, tenantID string, in *Input) error
	ListInputs(ctx context.Context, tenantID, sessionID string) ([]Input, error)
}

// EventPublisher fans out state-change notifications. Implementations are
// fire-and-forget: a publish failure must never surface to the business
// operation that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, tenantID, sessionID string, event events.Event)
}
