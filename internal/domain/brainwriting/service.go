package brainwriting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kutahiru/idea-labo-sub002/internal/events"
	"github.com/kutahiru/idea-labo-sub002/internal/repoerr"
)

// Settings are the injected protocol constants. Nothing in the service reads
// them from globals.
type Settings struct {
	Capacity  int
	RowBudget int
	Columns   int
	LockTTL   time.Duration
}

// Service is the atomic boundary for brainwriting sessions: it owns session,
// participant, sheet and input state, gates joins, sequences turns and emits
// notifications. The caller's identity is always an explicit parameter; the
// service never consults ambient auth state.
type Service struct {
	repo      SessionRepository
	publisher EventPublisher
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
	locks     *LockManager
}

// NewService creates a brainwriting service.
func NewService(repo SessionRepository, publisher EventPublisher, settings Settings, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locks = NewLockManager(repo, settings.LockTTL, s.now)
	return s
}

// Locks exposes the lock manager, mainly for tests and diagnostics.
func (s *Service) Locks() *LockManager {
	return s.locks
}

// CreateRequest describes a new session.
type CreateRequest struct {
	Mode        UsageMode
	Title       string
	Theme       string
	Description string
}

// Create allocates a session and its invite token. Broadcast sessions get
// their single sheet immediately; team sessions get sheets at Start.
func (s *Service) Create(ctx context.Context, tenantID, ownerID string, req CreateRequest) (*Session, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown usage mode %q", ErrInvalidInput, req.Mode)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Theme) == "" {
		return nil, fmt.Errorf("%w: title and theme are required", ErrInvalidInput)
	}

	sess := &Session{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		OwnerID:      ownerID,
		Mode:         req.Mode,
		Title:        req.Title,
		Theme:        req.Theme,
		Description:  req.Description,
		InviteToken:  uuid.NewString(),
		InviteActive: true,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, tenantID, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if req.Mode == ModeBroadcast {
		sheet := Sheet{ID: uuid.NewString(), SessionID: sess.ID, Seq: 0}
		if err := s.repo.CreateSheets(ctx, tenantID, sess.ID, []Sheet{sheet}); err != nil {
			return nil, fmt.Errorf("creating broadcast sheet: %w", err)
		}
	}

	return sess, nil
}

// Start creates one sheet per current participant of a team session and
// issues each participant the initial lock on their own sheet. Starting twice
// is rejected.
func (s *Service) Start(ctx context.Context, tenantID, userID, sessionID string) error {
	sess, err := s.getSession(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if sess.Mode != ModeTeam {
		return ErrWrongMode
	}
	if sess.OwnerID != userID {
		return ErrNotOwner
	}

	participants, err := s.repo.ListParticipants(ctx, tenantID, sessionID)
	if err != nil {
		return fmt.Errorf("listing participants: %w", err)
	}
	if len(participants) == 0 {
		return fmt.Errorf("%w: no participants to start with", ErrInvalidInput)
	}

	expiresAt := s.now().Add(s.settings.LockTTL)
	sheets := make([]Sheet, len(participants))
	for i, p := range participants {
		holder := p.UserID
		sheets[i] = Sheet{
			ID:            uuid.NewString(),
			SessionID:     sessionID,
			Seq:           i,
			HolderID:      &holder,
			LockExpiresAt: &expiresAt,
		}
	}

	if err := s.repo.CreateSheets(ctx, tenantID, sessionID, sheets); err != nil {
		if errors.Is(err, repoerr.ErrConflict) {
			return ErrAlreadyStarted
		}
		return fmt.Errorf("creating sheets: %w", err)
	}

	s.publisher.Publish(ctx, tenantID, sessionID, events.SessionStarted{
		SessionID:  sessionID,
		SheetCount: len(sheets),
	})
	return nil
}

// Join gates a user's entry into a session: expired locks are reclaimed
// first, capacity is enforced, and re-joining is idempotent. In broadcast
// mode the joiner must win the sole sheet's lock; in team mode joining only
// registers membership and is rejected once sheets exist.
func (s *Service) Join(ctx context.Context, tenantID, userID, sessionID string) (*JoinResult, error) {
	sess, err := s.getSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.locks.ClearExpired(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}

	for i, p := range participants {
		if p.UserID == userID {
			return s.existingAssignment(ctx, tenantID, userID, sess, i)
		}
	}

	if len(participants) >= s.settings.Capacity {
		return nil, ErrSessionFull
	}

	result := &JoinResult{SessionID: sessionID, ParticipantNum: len(participants) + 1}

	if sess.Mode == ModeBroadcast {
		sheets, err := s.repo.ListSheets(ctx, tenantID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("listing sheets: %w", err)
		}
		if len(sheets) == 0 {
			return nil, ErrSheetNotFound
		}
		sheet := sheets[0]

		status, err := s.locks.TryAcquire(ctx, tenantID, sheet.ID, userID)
		if err != nil {
			return nil, err
		}
		if !status.Granted {
			return nil, fmt.Errorf("%w: held by %s", ErrSheetLocked, status.HeldBy)
		}
		result.SheetID = &sheet.ID
	} else {
		sheets, err := s.repo.ListSheets(ctx, tenantID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("listing sheets: %w", err)
		}
		if len(sheets) > 0 {
			return nil, ErrAlreadyStarted
		}
	}

	p := &Participant{SessionID: sessionID, UserID: userID, JoinedAt: s.now()}
	if err := s.repo.AddParticipant(ctx, tenantID, p); err != nil {
		if errors.Is(err, repoerr.ErrConflict) {
			// Lost a race against our own retry; fall back to the existing
			// assignment.
			return s.Join(ctx, tenantID, userID, sessionID)
		}
		return nil, fmt.Errorf("adding participant: %w", err)
	}

	s.publisher.Publish(ctx, tenantID, sessionID, events.ParticipantJoined{
		SessionID: sessionID,
		UserID:    userID,
	})
	return result, nil
}

// JoinByToken resolves an invite link and joins the session it names.
func (s *Service) JoinByToken(ctx context.Context, tenantID, userID, token string) (*JoinResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty invite token", ErrInvalidInput)
	}
	sess, err := s.repo.GetByInviteToken(ctx, tenantID, token)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("resolving invite token: %w", err)
	}
	if !sess.InviteActive && sess.OwnerID != userID {
		return nil, ErrInviteInactive
	}
	return s.Join(ctx, tenantID, userID, sess.ID)
}

// SubmitInput writes one cell of the caller's current row. The caller must
// hold the sheet's lock and write only the row in progress; anything else is
// rejected without mutating state.
func (s *Service) SubmitInput(ctx context.Context, tenantID, userID, sessionID, sheetID string, row, col int, content string) error {
	sess, err := s.getSession(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidInput)
	}

	if err := s.locks.ClearExpired(ctx, tenantID, sessionID); err != nil {
		return err
	}

	if err := s.requireParticipant(ctx, tenantID, userID, sessionID); err != nil {
		return err
	}

	sheet, err := s.getSheet(ctx, tenantID, sessionID, sheetID)
	if err != nil {
		return err
	}

	maxRows := s.maxRows(ctx, tenantID, sess)
	if col < 0 || col >= s.settings.Columns || row < 0 || row >= maxRows {
		return ErrInvalidCell
	}

	if sheet.LockedBy(s.now()) != userID {
		return ErrWrongTurn
	}

	inputs, err := s.repo.ListInputs(ctx, tenantID, sessionID)
	if err != nil {
		return fmt.Errorf("listing inputs: %w", err)
	}
	if row != CurrentRow(inputs, sheetID, s.settings.Columns) {
		return ErrWrongTurn
	}

	now := s.now()
	in := &Input{
		SessionID: sessionID,
		SheetID:   sheetID,
		AuthorID:  userID,
		Row:       row,
		Col:       col,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertInput(ctx, tenantID, in); err != nil {
		return fmt.Errorf("writing input: %w", err)
	}
	return nil
}

// FinishTurn ends the caller's turn on a sheet after they completed their
// row. In team mode the lock rotates round-robin to the next participant who
// has not yet held the sheet; in broadcast mode it is simply released for the
// next joiner. A completed sheet is released without reassignment.
func (s *Service) FinishTurn(ctx context.Context, tenantID, userID, sessionID, sheetID string) error {
	sess, err := s.getSession(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}

	if err := s.locks.ClearExpired(ctx, tenantID, sessionID); err != nil {
		return err
	}

	sheet, err := s.getSheet(ctx, tenantID, sessionID, sheetID)
	if err != nil {
		return err
	}
	if sheet.LockedBy(s.now()) != userID {
		return ErrWrongTurn
	}

	inputs, err := s.repo.ListInputs(ctx, tenantID, sessionID)
	if err != nil {
		return fmt.Errorf("listing inputs: %w", err)
	}

	rowsDone := CurrentRow(inputs, sheetID, s.settings.Columns)
	if rowsDone == 0 {
		return fmt.Errorf("%w: no completed row to finish", ErrWrongTurn)
	}
	lastAuthors := RowAuthors(inputs, sheetID, rowsDone-1)
	if !contains(lastAuthors, userID) {
		return fmt.Errorf("%w: current row was not written by caller", ErrWrongTurn)
	}

	event := events.SheetRotated{SessionID: sessionID, SheetID: sheetID, FromUser: userID}

	if sess.Mode == ModeBroadcast {
		if err := s.locks.Release(ctx, tenantID, sheetID, userID); err != nil {
			return err
		}
		s.publisher.Publish(ctx, tenantID, sessionID, event)
		return nil
	}

	participants, err := s.repo.ListParticipants(ctx, tenantID, sessionID)
	if err != nil {
		return fmt.Errorf("listing participants: %w", err)
	}

	if TeamSheetComplete(inputs, sheetID, len(participants)) {
		if err := s.locks.Release(ctx, tenantID, sheetID, userID); err != nil {
			return err
		}
		s.publisher.Publish(ctx, tenantID, sessionID, event)
		return nil
	}

	next := NextHolder(participants, sheet.Seq, rowsDone)
	ok, expiresAt, err := s.locks.Reassign(ctx, tenantID, sheetID, userID, next)
	if err != nil {
		return err
	}
	if !ok {
		// The lock expired and was claimed between our check and the swap.
		return ErrWrongTurn
	}

	event.ToUser = next
	event.ExpiresAt = &expiresAt
	s.publisher.Publish(ctx, tenantID, sessionID, event)
	return nil
}

// GetDetail returns the full session state annotated with the requesting
// user's lock and turn eligibility. Expired locks are reclaimed before the
// state is evaluated.
func (s *Service) GetDetail(ctx context.Context, tenantID, userID, sessionID string) (*Detail, error) {
	sess, err := s.getSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.locks.ClearExpired(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	sheets, err := s.repo.ListSheets(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	inputs, err := s.repo.ListInputs(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing inputs: %w", err)
	}

	joined := false
	for _, p := range participants {
		if p.UserID == userID {
			joined = true
			break
		}
	}
	if !joined && sess.OwnerID != userID && !sess.ResultsPublic {
		return nil, ErrNotParticipant
	}

	viewer := ViewerState{UserID: userID, Joined: joined}
	now := s.now()
	for i := range sheets {
		if sheets[i].LockedBy(now) == userID {
			viewer.YourTurn = true
			viewer.HeldSheetID = &sheets[i].ID
			viewer.CurrentRow = CurrentRow(inputs, sheets[i].ID, s.settings.Columns)
			break
		}
	}

	return &Detail{
		Session:      *sess,
		Participants: participants,
		Sheets:       sheets,
		Inputs:       inputs,
		Viewer:       viewer,
		Complete: SessionComplete(
			sess.Mode, sheets, inputs,
			len(participants), s.settings.Columns, s.settings.RowBudget,
		),
	}, nil
}

// SetFlags toggles the invite-active and results-public flags. Owner only.
func (s *Service) SetFlags(ctx context.Context, tenantID, userID, sessionID string, inviteActive, resultsPublic bool) error {
	sess, err := s.getSession(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if sess.OwnerID != userID {
		return ErrNotOwner
	}
	if err := s.repo.UpdateFlags(ctx, tenantID, sessionID, inviteActive, resultsPublic); err != nil {
		return fmt.Errorf("updating flags: %w", err)
	}
	return nil
}

// ListMine returns the sessions owned by the user, newest first.
func (s *Service) ListMine(ctx context.Context, tenantID, userID string) ([]Session, error) {
	sessions, err := s.repo.ListByOwner(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

func (s *Service) existingAssignment(ctx context.Context, tenantID, userID string, sess *Session, participantIdx int) (*JoinResult, error) {
	result := &JoinResult{
		SessionID:      sess.ID,
		AlreadyJoined:  true,
		ParticipantNum: participantIdx + 1,
	}
	sheets, err := s.repo.ListSheets(ctx, tenantID, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	if sess.Mode == ModeBroadcast {
		if len(sheets) > 0 {
			result.SheetID = &sheets[0].ID
		}
		return result, nil
	}
	if participantIdx < len(sheets) {
		result.SheetID = &sheets[participantIdx].ID
	}
	return result, nil
}

func (s *Service) getSession(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	sess, err := s.repo.Get(ctx, tenantID, sessionID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

func (s *Service) getSheet(ctx context.Context, tenantID, sessionID, sheetID string) (*Sheet, error) {
	sheet, err := s.repo.GetSheet(ctx, tenantID, sheetID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("loading sheet: %w", err)
	}
	if sheet.SessionID != sessionID {
		return nil, ErrSheetNotFound
	}
	return sheet, nil
}

func (s *Service) requireParticipant(ctx context.Context, tenantID, userID, sessionID string) error {
	participants, err := s.repo.ListParticipants(ctx, tenantID, sessionID)
	if err != nil {
		return fmt.Errorf("listing participants: %w", err)
	}
	for _, p := range participants {
		if p.UserID == userID {
			return nil
		}
	}
	return ErrNotParticipant
}

// maxRows is the number of rows a sheet accepts: the broadcast row budget, or
// one row per participant in team mode.
func (s *Service) maxRows(ctx context.Context, tenantID string, sess *Session) int {
	if sess.Mode == ModeBroadcast {
		return s.settings.RowBudget
	}
	participants, err := s.repo.ListParticipants(ctx, tenantID, sess.ID)
	if err != nil || len(participants) == 0 {
		return s.settings.RowBudget
	}
	return len(participants)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
