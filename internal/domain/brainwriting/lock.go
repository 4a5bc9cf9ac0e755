package brainwriting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kutahiru/idea-labo-sub002/internal/repoerr"
)

// LockManager grants, releases and lazily expires exclusive sheet locks. The
// actual linearization happens in the repository as a conditional update on
// (holder, expiry); the manager only decides what to ask for and how to
// report contention.
type LockManager struct {
	repo SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewLockManager creates a lock manager issuing locks with the given TTL.
func NewLockManager(repo SessionRepository, ttl time.Duration, now func() time.Time) *LockManager {
	if now == nil {
		now = time.Now
	}
	return &LockManager{repo: repo, ttl: ttl, now: now}
}

// TryAcquire attempts to lock the sheet for userID. Contention is not an
// error: the returned status reports who holds the sheet and until when.
func (m *LockManager) TryAcquire(ctx context.Context, tenantID, sheetID, userID string) (LockStatus, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	granted, err := m.repo.TryAcquireSheet(ctx, tenantID, sheetID, userID, expiresAt, now)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return LockStatus{}, ErrSheetNotFound
		}
		return LockStatus{}, fmt.Errorf("acquiring sheet lock: %w", err)
	}
	if granted {
		return LockStatus{Granted: true, HeldBy: userID, ExpiresAt: &expiresAt}, nil
	}

	sheet, err := m.repo.GetSheet(ctx, tenantID, sheetID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return LockStatus{}, ErrSheetNotFound
		}
		return LockStatus{}, fmt.Errorf("loading sheet: %w", err)
	}

	status := LockStatus{Granted: false}
	if holder := sheet.LockedBy(now); holder != "" {
		status.HeldBy = holder
		status.ExpiresAt = sheet.LockExpiresAt
	}
	return status, nil
}

// Release clears the lock if userID holds it. Releasing a lock already gone,
// or held by someone else, is a no-op, not an error.
func (m *LockManager) Release(ctx context.Context, tenantID, sheetID, userID string) error {
	if err := m.repo.ReleaseSheet(ctx, tenantID, sheetID, userID); err != nil {
		return fmt.Errorf("releasing sheet lock: %w", err)
	}
	return nil
}

// ClearExpired reclaims every expired lock in the session. Every join or
// status check runs this first; there is no background sweeper.
func (m *LockManager) ClearExpired(ctx context.Context, tenantID, sessionID string) error {
	if err := m.repo.ClearExpiredLocks(ctx, tenantID, sessionID, m.now()); err != nil {
		return fmt.Errorf("clearing expired locks: %w", err)
	}
	return nil
}

// Reassign hands the lock from the current holder to the next participant
// with a fresh TTL, as a single compare-and-swap. It reports false when the
// caller no longer holds the sheet.
func (m *LockManager) Reassign(ctx context.Context, tenantID, sheetID, fromUserID, toUserID string) (bool, time.Time, error) {
	expiresAt := m.now().Add(m.ttl)
	ok, err := m.repo.ReassignSheet(ctx, tenantID, sheetID, fromUserID, toUserID, expiresAt)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("reassigning sheet lock: %w", err)
	}
	return ok, expiresAt, nil
}
