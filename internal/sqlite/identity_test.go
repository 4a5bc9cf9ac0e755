package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

func TestIdentityRepository_ResolveToken(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIdentityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertToken(ctx, "hash1", "t1", "alice", "test token"))

	id, err := repo.ResolveToken(ctx, "hash1")
	require.NoError(t, err)
	require.Equal(t, "t1", id.TenantID)
	require.Equal(t, "alice", id.UserID)

	_, err = repo.ResolveToken(ctx, "no-such-hash")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIdentityRepository_InsertTokenConflict(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIdentityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertToken(ctx, "hash1", "t1", "alice", ""))
	err := repo.InsertToken(ctx, "hash1", "t1", "bob", "")
	require.ErrorIs(t, err, repository.ErrConflict)
}
