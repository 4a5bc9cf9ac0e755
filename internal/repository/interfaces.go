package repository

import (
	"context"
	"time"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
)

// SessionRepository manages brainwriting persistence: sessions, participants,
// sheets and inputs. Lock mutations are conditional updates so concurrent
// acquirers linearize per sheet.
type SessionRepository interface {
	Create(ctx context.Context, tenantID string, sess *brainwriting.Session) error
	Get(ctx context.Context, tenantID, id string) (*brainwriting.Session, error)
	GetByInviteToken(ctx context.Context, tenantID, token string) (*brainwriting.Session, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]brainwriting.Session, error)
	UpdateFlags(ctx context.Context, tenantID, id string, inviteActive, resultsPublic bool) error
	AddParticipant(ctx context.Context, tenantID string, p *brainwriting.Participant) error
	ListParticipants(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Participant, error)
	CreateSheets(ctx context.Context, tenantID, sessionID string, sheets []brainwriting.Sheet) error
	GetSheet(ctx context.Context, tenantID, sheetID string) (*brainwriting.Sheet, error)
	ListSheets(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Sheet, error)
	TryAcquireSheet(ctx context.Context, tenantID, sheetID, userID string, expiresAt, now time.Time) (bool, error)
	ReleaseSheet(ctx context.Context, tenantID, sheetID, userID string) error
	ReassignSheet(ctx context.Context, tenantID, sheetID, fromUserID, toUserID string, expiresAt time.Time) (bool, error)
	ClearExpiredLocks(ctx context.Context, tenantID, sessionID string, now time.Time) error
	UpsertInput(ctx context.Context, tenantID string, in *brainwriting.Input) error
	ListInputs(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Input, error)
}

// MandalartRepository manages mandalart persistence.
type MandalartRepository interface {
	Create(ctx context.Context, tenantID string, m *mandalart.Mandalart) error
	Get(ctx context.Context, tenantID, id string) (*mandalart.Mandalart, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]mandalart.Mandalart, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpsertCell(ctx context.Context, tenantID string, cell *mandalart.Cell) error
	ListCells(ctx context.Context, tenantID, mandalartID string) ([]mandalart.Cell, error)
}

// ChecklistRepository manages Osborn checklist persistence.
type ChecklistRepository interface {
	Create(ctx context.Context, tenantID string, c *osborn.Checklist) error
	Get(ctx context.Context, tenantID, id string) (*osborn.Checklist, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]osborn.Checklist, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpsertAnswer(ctx context.Context, tenantID string, a *osborn.Answer) error
	ListAnswers(ctx context.Context, tenantID, checklistID string) ([]osborn.Answer, error)
}

// Identity is the resolved caller of a request. The core trusts it entirely;
// issuing tokens is the concern of an external OAuth collaborator.
type Identity struct {
	TenantID string
	UserID   string
}

// IdentityRepository resolves bearer tokens to identities.
type IdentityRepository interface {
	ResolveToken(ctx context.Context, tokenHash string) (*Identity, error)
}
