package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite. Lock
// mutations are single conditional UPDATEs keyed on the previous holder and
// expiry, which gives compare-and-swap semantics without row locking.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, tenantID string, sess *brainwriting.Session) error {
	query := `
		INSERT INTO sessions (
			id, tenant_id, owner_id, usage_mode, title, theme, description,
			invite_token, invite_active, results_public, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		tenantID,
		sess.OwnerID,
		sess.Mode,
		sess.Title,
		sess.Theme,
		sess.Description,
		sess.InviteToken,
		sess.InviteActive,
		sess.ResultsPublic,
		sess.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, tenantID, id string) (*brainwriting.Session, error) {
	query := `
		SELECT
			id, tenant_id, owner_id, usage_mode, title, theme, description,
			invite_token, invite_active, results_public, created_at
		FROM sessions
		WHERE id = ? AND tenant_id = ?
	`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id, tenantID))
}

// GetByInviteToken retrieves a session by its invite-link token
func (r *SessionRepository) GetByInviteToken(ctx context.Context, tenantID, token string) (*brainwriting.Session, error) {
	query := `
		SELECT
			id, tenant_id, owner_id, usage_mode, title, theme, description,
			invite_token, invite_active, results_public, created_at
		FROM sessions
		WHERE invite_token = ? AND tenant_id = ?
	`
	return r.scanSession(r.db.QueryRowContext(ctx, query, token, tenantID))
}

// ListByOwner returns the sessions owned by a user, newest first
func (r *SessionRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]brainwriting.Session, error) {
	query := `
		SELECT
			id, tenant_id, owner_id, usage_mode, title, theme, description,
			invite_token, invite_active, results_public, created_at
		FROM sessions
		WHERE tenant_id = ? AND owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []brainwriting.Session
	for rows.Next() {
		sess, err := r.scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// UpdateFlags sets the invite-active and results-public flags
func (r *SessionRepository) UpdateFlags(ctx context.Context, tenantID, id string, inviteActive, resultsPublic bool) error {
	query := `
		UPDATE sessions
		SET invite_active = ?, results_public = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, inviteActive, resultsPublic, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddParticipant registers a user in a session. Returns
// repository.ErrConflict when the (session, user) pair already exists.
func (r *SessionRepository) AddParticipant(ctx context.Context, tenantID string, p *brainwriting.Participant) error {
	query := `
		INSERT INTO participants (session_id, user_id, joined_at)
		SELECT ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM sessions WHERE id = ? AND tenant_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query, p.SessionID, p.UserID, p.JoinedAt, p.SessionID, tenantID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListParticipants returns participants ordered by join time
func (r *SessionRepository) ListParticipants(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Participant, error) {
	query := `
		SELECT p.session_id, p.user_id, p.joined_at
		FROM participants p
		JOIN sessions s ON s.id = p.session_id
		WHERE p.session_id = ? AND s.tenant_id = ?
		ORDER BY p.joined_at ASC, p.user_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []brainwriting.Participant
	for rows.Next() {
		var p brainwriting.Participant
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// CreateSheets inserts all sheets of a session in one transaction. Returns
// repository.ErrConflict if the session already has sheets, which guards
// against a double-start race.
func (r *SessionRepository) CreateSheets(ctx context.Context, tenantID, sessionID string, sheets []brainwriting.Sheet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	countQuery := `
		SELECT COUNT(*)
		FROM sheets sh
		JOIN sessions s ON s.id = sh.session_id
		WHERE sh.session_id = ? AND s.tenant_id = ?
	`
	if err := tx.QueryRowContext(ctx, countQuery, sessionID, tenantID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count sheets: %w", err)
	}
	if count > 0 {
		return repository.ErrConflict
	}

	insert := `
		INSERT INTO sheets (id, session_id, seq, holder_id, lock_expires_at)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM sessions WHERE id = ? AND tenant_id = ?)
	`
	for _, sheet := range sheets {
		result, err := tx.ExecContext(ctx, insert,
			sheet.ID,
			sessionID,
			sheet.Seq,
			sheet.HolderID,
			expiryMillis(sheet.LockExpiresAt),
			sessionID,
			tenantID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return repository.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sheets: %w", err)
	}
	return nil
}

// GetSheet retrieves a sheet by ID
func (r *SessionRepository) GetSheet(ctx context.Context, tenantID, sheetID string) (*brainwriting.Sheet, error) {
	query := `
		SELECT sh.id, sh.session_id, sh.seq, sh.holder_id, sh.lock_expires_at
		FROM sheets sh
		JOIN sessions s ON s.id = sh.session_id
		WHERE sh.id = ? AND s.tenant_id = ?
	`
	return scanSheet(r.db.QueryRowContext(ctx, query, sheetID, tenantID))
}

// ListSheets returns a session's sheets ordered by sequence number
func (r *SessionRepository) ListSheets(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Sheet, error) {
	query := `
		SELECT sh.id, sh.session_id, sh.seq, sh.holder_id, sh.lock_expires_at
		FROM sheets sh
		JOIN sessions s ON s.id = sh.session_id
		WHERE sh.session_id = ? AND s.tenant_id = ?
		ORDER BY sh.seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []brainwriting.Sheet
	for rows.Next() {
		var sheet brainwriting.Sheet
		var holder sql.NullString
		var expires sql.NullInt64
		if err := rows.Scan(&sheet.ID, &sheet.SessionID, &sheet.Seq, &holder, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		applyLockColumns(&sheet, holder, expires)
		sheets = append(sheets, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sheets: %w", err)
	}

	return sheets, nil
}

// TryAcquireSheet grants the lock with a single conditional update: it
// succeeds iff the sheet is unheld, its lock has expired, or the caller
// already holds it (refresh). Concurrent acquirers against the same unlocked
// sheet therefore yield exactly one grant.
func (r *SessionRepository) TryAcquireSheet(ctx context.Context, tenantID, sheetID, userID string, expiresAt, now time.Time) (bool, error) {
	query := `
		UPDATE sheets
		SET holder_id = ?, lock_expires_at = ?
		WHERE id = ?
		  AND session_id IN (SELECT id FROM sessions WHERE tenant_id = ?)
		  AND (holder_id IS NULL OR lock_expires_at <= ? OR holder_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		userID, expiresAt.UnixMilli(), sheetID, tenantID, now.UnixMilli(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to acquire sheet lock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// ReleaseSheet clears the lock iff the caller holds it. A release of a sheet
// held by someone else, or not held at all, affects no rows and is not an
// error.
func (r *SessionRepository) ReleaseSheet(ctx context.Context, tenantID, sheetID, userID string) error {
	query := `
		UPDATE sheets
		SET holder_id = NULL, lock_expires_at = NULL
		WHERE id = ?
		  AND session_id IN (SELECT id FROM sessions WHERE tenant_id = ?)
		  AND holder_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, sheetID, tenantID, userID); err != nil {
		return fmt.Errorf("failed to release sheet lock: %w", err)
	}
	return nil
}

// ReassignSheet hands the lock from one holder to the next in a single
// compare-and-swap keyed on the current holder.
func (r *SessionRepository) ReassignSheet(ctx context.Context, tenantID, sheetID, fromUserID, toUserID string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE sheets
		SET holder_id = ?, lock_expires_at = ?
		WHERE id = ?
		  AND session_id IN (SELECT id FROM sessions WHERE tenant_id = ?)
		  AND holder_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		toUserID, expiresAt.UnixMilli(), sheetID, tenantID, fromUserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reassign sheet lock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// ClearExpiredLocks nulls out holder and expiry on every sheet of the session
// whose lock has passed its expiry.
func (r *SessionRepository) ClearExpiredLocks(ctx context.Context, tenantID, sessionID string, now time.Time) error {
	query := `
		UPDATE sheets
		SET holder_id = NULL, lock_expires_at = NULL
		WHERE session_id = ?
		  AND session_id IN (SELECT id FROM sessions WHERE tenant_id = ?)
		  AND lock_expires_at IS NOT NULL
		  AND lock_expires_at <= ?
	`

	if _, err := r.db.ExecContext(ctx, query, sessionID, tenantID, now.UnixMilli()); err != nil {
		return fmt.Errorf("failed to clear expired locks: %w", err)
	}
	return nil
}

// UpsertInput writes a cell, replacing previous content at the same
// (sheet, row, col) key.
func (r *SessionRepository) UpsertInput(ctx context.Context, tenantID string, in *brainwriting.Input) error {
	query := `
		INSERT INTO inputs (session_id, sheet_id, author_id, row_idx, col_idx, content, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM sessions WHERE id = ? AND tenant_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		in.SessionID, in.SheetID, in.AuthorID, in.Row, in.Col,
		in.Content, in.CreatedAt, in.UpdatedAt,
		in.SessionID, tenantID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			update := `
				UPDATE inputs
				SET content = ?, author_id = ?, updated_at = ?
				WHERE sheet_id = ? AND row_idx = ? AND col_idx = ?
			`
			if _, updateErr := r.db.ExecContext(ctx, update,
				in.Content, in.AuthorID, in.UpdatedAt, in.SheetID, in.Row, in.Col,
			); updateErr != nil {
				return fmt.Errorf("failed to overwrite input: %w", updateErr)
			}
			return nil
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to write input: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListInputs returns every input of a session ordered by sheet, row, col
func (r *SessionRepository) ListInputs(ctx context.Context, tenantID, sessionID string) ([]brainwriting.Input, error) {
	query := `
		SELECT i.session_id, i.sheet_id, i.author_id, i.row_idx, i.col_idx,
		       i.content, i.created_at, i.updated_at
		FROM inputs i
		JOIN sessions s ON s.id = i.session_id
		WHERE i.session_id = ? AND s.tenant_id = ?
		ORDER BY i.sheet_id, i.row_idx, i.col_idx
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []brainwriting.Input
	for rows.Next() {
		var in brainwriting.Input
		if err := rows.Scan(
			&in.SessionID, &in.SheetID, &in.AuthorID, &in.Row, &in.Col,
			&in.Content, &in.CreatedAt, &in.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inputs: %w", err)
	}

	return inputs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scanSession(row rowScanner) (*brainwriting.Session, error) {
	sess, err := r.scanSessionRow(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (r *SessionRepository) scanSessionRow(row rowScanner) (*brainwriting.Session, error) {
	var sess brainwriting.Session
	var description sql.NullString
	err := row.Scan(
		&sess.ID,
		&sess.TenantID,
		&sess.OwnerID,
		&sess.Mode,
		&sess.Title,
		&sess.Theme,
		&description,
		&sess.InviteToken,
		&sess.InviteActive,
		&sess.ResultsPublic,
		&sess.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	sess.Description = description.String
	return &sess, nil
}

func scanSheet(row rowScanner) (*brainwriting.Sheet, error) {
	var sheet brainwriting.Sheet
	var holder sql.NullString
	var expires sql.NullInt64
	err := row.Scan(&sheet.ID, &sheet.SessionID, &sheet.Seq, &holder, &expires)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sheet: %w", err)
	}
	applyLockColumns(&sheet, holder, expires)
	return &sheet, nil
}

func applyLockColumns(sheet *brainwriting.Sheet, holder sql.NullString, expires sql.NullInt64) {
	if holder.Valid {
		sheet.HolderID = &holder.String
	}
	if expires.Valid {
		t := time.UnixMilli(expires.Int64)
		sheet.LockExpiresAt = &t
	}
}

func expiryMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
