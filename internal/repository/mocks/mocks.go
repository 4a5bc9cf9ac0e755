package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/events"
)

// SessionRepository is a mock for repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, tenantID string, sess *brainwriting.Session) error {
	args := m.Called(ctx, tenantID, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, tenantID, id string) (*brainwriting.Session, error) {
	args := m.Called(ctx, tenantID, id)
	if sess, ok := args.Get(0).(*brainwriting.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) GetByInviteToken(ctx context.Context, tenantID, token string) (*brainwriting.Session, error) {
	args := m.Called(ctx, tenantID, token)
	if sess, ok := args.Get(0).(*brainwriting.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]brainwriting.Session, error) {
	args := m.Called(ctx, tenantID, ownerID)
	if list, ok := args.Get(0).([]brainwriting.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) UpdateFlags(ctx context.Context, tenantID, id string, inviteActive, resultsPublic bool) error {
	args := m.Called(ctx, tenantID, id, inviteActive, resultsPublic)
	return args.Error(0)
}

func (m *SessionRepository) AddParticipant(ctx context.Context, tenantID string, p *brainwriting.Participant) error {
	args := m.Called(ctx, tenantID, p)
	return args.Error(0)
}

func (m *SessionRepository) ListParticipants(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Participant, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if list, ok := args.Get(0).([]brainwriting.Participant); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) CreateSheets(ctx context.Context, tenantID, sessionID string, sheets []brainwriting.Sheet) error {
	args := m.Called(ctx, tenantID, sessionID, sheets)
	return args.Error(0)
}

func (m *SessionRepository) GetSheet(ctx context.Context, tenantID, sheetID string) (*brainwriting.Sheet, error) {
	args := m.Called(ctx, tenantID, sheetID)
	if sheet, ok := args.Get(0).(*brainwriting.Sheet); ok {
		return sheet, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) ListSheets(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Sheet, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if list, ok := args.Get(0).([]brainwriting.Sheet); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) TryAcquireSheet(ctx context.Context, tenantID, sheetID, userID string, expiresAt, now time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, sheetID, userID, expiresAt, now)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepository) ReleaseSheet(ctx context.Context, tenantID, sheetID, userID string) error {
	args := m.Called(ctx, tenantID, sheetID, userID)
	return args.Error(0)
}

func (m *SessionRepository) ReassignSheet(ctx context.Context, tenantID, sheetID, fromUserID, toUserID string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, sheetID, fromUserID, toUserID, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepository) ClearExpiredLocks(ctx context.Context, tenantID, sessionID string, now time.Time) error {
	args := m.Called(ctx, tenantID, sessionID, now)
	return args.Error(0)
}

func (m *SessionRepository) UpsertInput(ctx context.Context, tenantID string, in *brainwriting.Input) error {
	args := m.Called(ctx, tenantID, in)
	return args.Error(0)
}

func (m *SessionRepository) ListInputs(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Input, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if list, ok := args.Get(0).([]brainwriting.Input); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MandalartRepository is a mock for repository.MandalartRepository.
type MandalartRepository struct {
	mock.Mock
}

func (m *MandalartRepository) Create(ctx context.Context, tenantID string, ma *mandalart.Mandalart) error {
	args := m.Called(ctx, tenantID, ma)
	return args.Error(0)
}

func (m *MandalartRepository) Get(ctx context.Context, tenantID, id string) (*mandalart.Mandalart, error) {
	args := m.Called(ctx, tenantID, id)
	if ma, ok := args.Get(0).(*mandalart.Mandalart); ok {
		return ma, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MandalartRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]mandalart.Mandalart, error) {
	args := m.Called(ctx, tenantID, ownerID)
	if list, ok := args.Get(0).([]mandalart.Mandalart); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MandalartRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MandalartRepository) UpsertCell(ctx context.Context, tenantID string, cell *mandalart.Cell) error {
	args := m.Called(ctx, tenantID, cell)
	return args.Error(0)
}

func (m *MandalartRepository) ListCells(ctx context.Context, tenantID, mandalartID string) ([]mandalart.Cell, error) {
	args := m.Called(ctx, tenantID, mandalartID)
	if list, ok := args.Get(0).([]mandalart.Cell); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChecklistRepository is a mock for repository.ChecklistRepository.
type ChecklistRepository struct {
	mock.Mock
}

func (m *ChecklistRepository) Create(ctx context.Context, tenantID string, c *osborn.Checklist) error {
	args := m.Called(ctx, tenantID, c)
	return args.Error(0)
}

func (m *ChecklistRepository) Get(ctx context.Context, tenantID, id string) (*osborn.Checklist, error) {
	args := m.Called(ctx, tenantID, id)
	if c, ok := args.Get(0).(*osborn.Checklist); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChecklistRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]osborn.Checklist, error) {
	args := m.Called(ctx, tenantID, ownerID)
	if list, ok := args.Get(0).([]osborn.Checklist); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChecklistRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *ChecklistRepository) UpsertAnswer(ctx context.Context, tenantID string, a *osborn.Answer) error {
	args := m.Called(ctx, tenantID, a)
	return args.Error(0)
}

func (m *ChecklistRepository) ListAnswers(ctx context.Context, tenantID, checklistID string) ([]osborn.Answer, error) {
	args := m.Called(ctx, tenantID, checklistID)
	if list, ok := args.Get(0).([]osborn.Answer); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// EventPublisher is a mock for brainwriting.EventPublisher that records every
// published event.
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, tenantID, sessionID string, event events.Event) {
	m.Called(ctx, tenantID, sessionID, event)
}
