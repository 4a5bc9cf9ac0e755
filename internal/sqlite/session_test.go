package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)

	got, err := repo.Get(ctx, "t1", sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, brainwriting.ModeBroadcast, got.Mode)
	require.True(t, got.InviteActive)

	// Another tenant cannot see it.
	_, err = repo.Get(ctx, "t2", sess.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_GetByInviteToken(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)

	got, err := repo.GetByInviteToken(ctx, "t1", sess.InviteToken)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)

	_, err = repo.GetByInviteToken(ctx, "t1", "no-such-token")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_UpdateFlags(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)

	require.NoError(t, repo.UpdateFlags(ctx, "t1", sess.ID, false, true))
	got, err := repo.Get(ctx, "t1", sess.ID)
	require.NoError(t, err)
	require.False(t, got.InviteActive)
	require.True(t, got.ResultsPublic)

	err = repo.UpdateFlags(ctx, "t1", "no-such-session", true, true)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_AddParticipant(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeTeam)

	base := time.Now().UTC()
	require.NoError(t, repo.AddParticipant(ctx, "t1", &brainwriting.Participant{
		SessionID: sess.ID, UserID: "alice", JoinedAt: base,
	}))
	require.NoError(t, repo.AddParticipant(ctx, "t1", &brainwriting.Participant{
		SessionID: sess.ID, UserID: "bob", JoinedAt: base.Add(time.Second),
	}))

	// Same (session, user) pair is a conflict.
	err := repo.AddParticipant(ctx, "t1", &brainwriting.Participant{
		SessionID: sess.ID, UserID: "alice", JoinedAt: base.Add(2 * time.Second),
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	// Wrong tenant cannot register membership.
	err = repo.AddParticipant(ctx, "t2", &brainwriting.Participant{
		SessionID: sess.ID, UserID: "mallory", JoinedAt: base,
	})
	require.ErrorIs(t, err, repository.ErrNotFound)

	participants, err := repo.ListParticipants(ctx, "t1", sess.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	require.Equal(t, "alice", participants[0].UserID)
	require.Equal(t, "bob", participants[1].UserID)
}

func TestSessionRepository_CreateSheetsOnce(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeTeam)

	sheets := []brainwriting.Sheet{
		{ID: uuid.NewString(), SessionID: sess.ID, Seq: 0},
		{ID: uuid.NewString(), SessionID: sess.ID, Seq: 1},
	}
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, sheets))

	// A second start must not create more sheets.
	err := repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: uuid.NewString(), SessionID: sess.ID, Seq: 0},
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	listed, err := repo.ListSheets(ctx, "t1", sess.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, 0, listed[0].Seq)
	require.Equal(t, 1, listed[1].Seq)
}

func TestSessionRepository_CreateSheetsWithInitialLocks(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeTeam)

	holder := "alice"
	expires := time.Now().Add(5 * time.Minute).UTC()
	sheets := []brainwriting.Sheet{
		{ID: uuid.NewString(), SessionID: sess.ID, Seq: 0, HolderID: &holder, LockExpiresAt: &expires},
	}
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, sheets))

	got, err := repo.GetSheet(ctx, "t1", sheets[0].ID)
	require.NoError(t, err)
	require.Equal(t, "alice", *got.HolderID)
	require.Equal(t, expires.UnixMilli(), got.LockExpiresAt.UnixMilli())
}

func TestSessionRepository_TryAcquireSheetExclusive(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)
	sheetID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: sheetID, SessionID: sess.ID, Seq: 0},
	}))

	now := time.Now().UTC()
	ttl := 5 * time.Minute

	granted, err := repo.TryAcquireSheet(ctx, "t1", sheetID, "alice", now.Add(ttl), now)
	require.NoError(t, err)
	require.True(t, granted)

	// A second user cannot take a live lock.
	granted, err = repo.TryAcquireSheet(ctx, "t1", sheetID, "bob", now.Add(ttl), now)
	require.NoError(t, err)
	require.False(t, granted)

	// The holder can refresh their own lock.
	granted, err = repo.TryAcquireSheet(ctx, "t1", sheetID, "alice", now.Add(2*ttl), now)
	require.NoError(t, err)
	require.True(t, granted)

	// Once the TTL elapses the sheet is up for grabs again.
	later := now.Add(3 * ttl)
	granted, err = repo.TryAcquireSheet(ctx, "t1", sheetID, "bob", later.Add(ttl), later)
	require.NoError(t, err)
	require.True(t, granted)

	sheet, err := repo.GetSheet(ctx, "t1", sheetID)
	require.NoError(t, err)
	require.Equal(t, "bob", *sheet.HolderID)
}

func TestSessionRepository_TryAcquireSheetTenantScoped(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)
	sheetID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: sheetID, SessionID: sess.ID, Seq: 0},
	}))

	now := time.Now().UTC()
	granted, err := repo.TryAcquireSheet(ctx, "t2", sheetID, "mallory", now.Add(time.Minute), now)
	require.NoError(t, err)
	require.False(t, granted)
}

func TestSessionRepository_ReleaseSheet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)
	sheetID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: sheetID, SessionID: sess.ID, Seq: 0},
	}))

	now := time.Now().UTC()
	granted, err := repo.TryAcquireSheet(ctx, "t1", sheetID, "alice", now.Add(time.Minute), now)
	require.NoError(t, err)
	require.True(t, granted)

	// Releasing someone else's lock is a silent no-op.
	require.NoError(t, repo.ReleaseSheet(ctx, "t1", sheetID, "bob"))
	sheet, err := repo.GetSheet(ctx, "t1", sheetID)
	require.NoError(t, err)
	require.Equal(t, "alice", *sheet.HolderID)

	require.NoError(t, repo.ReleaseSheet(ctx, "t1", sheetID, "alice"))
	sheet, err = repo.GetSheet(ctx, "t1", sheetID)
	require.NoError(t, err)
	require.Nil(t, sheet.HolderID)
	require.Nil(t, sheet.LockExpiresAt)
}

func TestSessionRepository_ReassignSheet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeTeam)
	sheetID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: sheetID, SessionID: sess.ID, Seq: 0},
	}))

	now := time.Now().UTC()
	granted, err := repo.TryAcquireSheet(ctx, "t1", sheetID, "alice", now.Add(time.Minute), now)
	require.NoError(t, err)
	require.True(t, granted)

	// CAS keyed on the wrong current holder fails.
	ok, err := repo.ReassignSheet(ctx, "t1", sheetID, "bob", "carol", now.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.ReassignSheet(ctx, "t1", sheetID, "alice", "bob", now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	sheet, err := repo.GetSheet(ctx, "t1", sheetID)
	require.NoError(t, err)
	require.Equal(t, "bob", *sheet.HolderID)
}

func TestSessionRepository_ClearExpiredLocks(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeTeam)
	expiredID := uuid.NewString()
	liveID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: expiredID, SessionID: sess.ID, Seq: 0},
		{ID: liveID, SessionID: sess.ID, Seq: 1},
	}))

	now := time.Now().UTC()
	_, err := repo.TryAcquireSheet(ctx, "t1", expiredID, "alice", now.Add(-time.Second), now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = repo.TryAcquireSheet(ctx, "t1", liveID, "bob", now.Add(time.Minute), now)
	require.NoError(t, err)

	require.NoError(t, repo.ClearExpiredLocks(ctx, "t1", sess.ID, now))

	sheet, err := repo.GetSheet(ctx, "t1", expiredID)
	require.NoError(t, err)
	require.Nil(t, sheet.HolderID)

	sheet, err = repo.GetSheet(ctx, "t1", liveID)
	require.NoError(t, err)
	require.Equal(t, "bob", *sheet.HolderID)
}

func TestSessionRepository_UpsertInput(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)
	sheetID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: sheetID, SessionID: sess.ID, Seq: 0},
	}))

	now := time.Now().UTC()
	in := &brainwriting.Input{
		SessionID: sess.ID, SheetID: sheetID, AuthorID: "alice",
		Row: 0, Col: 0, Content: "first idea",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.UpsertInput(ctx, "t1", in))

	// Writing the same cell again replaces the content.
	in.Content = "better idea"
	in.UpdatedAt = now.Add(time.Second)
	require.NoError(t, repo.UpsertInput(ctx, "t1", in))

	inputs, err := repo.ListInputs(ctx, "t1", sess.ID)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	require.Equal(t, "better idea", inputs[0].Content)

	// Tenant guard blocks writes through the wrong tenant.
	err = repo.UpsertInput(ctx, "t2", &brainwriting.Input{
		SessionID: sess.ID, SheetID: sheetID, AuthorID: "mallory",
		Row: 1, Col: 0, Content: "x", CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_ListInputsOrdered(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)
	sheetID := uuid.NewString()
	require.NoError(t, repo.CreateSheets(ctx, "t1", sess.ID, []brainwriting.Sheet{
		{ID: sheetID, SessionID: sess.ID, Seq: 0},
	}))

	now := time.Now().UTC()
	for _, cell := range []struct{ row, col int }{{1, 0}, {0, 1}, {0, 0}} {
		require.NoError(t, repo.UpsertInput(ctx, "t1", &brainwriting.Input{
			SessionID: sess.ID, SheetID: sheetID, AuthorID: "alice",
			Row: cell.row, Col: cell.col, Content: "idea",
			CreatedAt: now, UpdatedAt: now,
		}))
	}

	inputs, err := repo.ListInputs(ctx, "t1", sess.ID)
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	require.Equal(t, 0, inputs[0].Row)
	require.Equal(t, 0, inputs[0].Col)
	require.Equal(t, 0, inputs[1].Row)
	require.Equal(t, 1, inputs[1].Col)
	require.Equal(t, 1, inputs[2].Row)
}

func TestSessionRepository_ListByOwner(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	createTestSession(t, db, "t1", "alice", brainwriting.ModeBroadcast)
	createTestSession(t, db, "t1", "alice", brainwriting.ModeTeam)
	createTestSession(t, db, "t1", "bob", brainwriting.ModeTeam)
	createTestSession(t, db, "t2", "alice", brainwriting.ModeTeam)

	sessions, err := repo.ListByOwner(ctx, "t1", "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
}
