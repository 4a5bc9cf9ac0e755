package mandalart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
	"github.com/kutahiru/idea-labo-sub002/internal/repository/mocks"
)

func TestMandalartService_CreateWritesCenterCell(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.MandalartRepository{}
	repo.On("Create", ctx, "t1", mock.Anything).Return(nil)
	repo.On("UpsertCell", ctx, "t1", mock.MatchedBy(func(c *mandalart.Cell) bool {
		return c.Block == mandalart.CenterBlock &&
			c.Position == mandalart.CenterCell &&
			c.Content == "learn piano"
	})).Return(nil)

	svc := mandalart.NewService(repo, nil)
	m, err := svc.Create(ctx, "t1", "alice", "learn piano")
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	repo.AssertExpectations(t)
}

func TestMandalartService_CreateValidation(t *testing.T) {
	svc := mandalart.NewService(&mocks.MandalartRepository{}, nil)
	_, err := svc.Create(context.Background(), "t1", "alice", "   ")
	require.ErrorIs(t, err, mandalart.ErrInvalidInput)
}

func TestMandalartService_OwnerOnly(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.MandalartRepository{}
	repo.On("Get", ctx, "t1", "m1").
		Return(&mandalart.Mandalart{ID: "m1", TenantID: "t1", OwnerID: "alice"}, nil)

	svc := mandalart.NewService(repo, nil)
	_, err := svc.Get(ctx, "t1", "bob", "m1")
	require.ErrorIs(t, err, mandalart.ErrNotOwner)

	err = svc.UpsertCell(ctx, "t1", "bob", "m1", 0, 0, "x")
	require.ErrorIs(t, err, mandalart.ErrNotOwner)

	err = svc.Delete(ctx, "t1", "bob", "m1")
	require.ErrorIs(t, err, mandalart.ErrNotOwner)
}

func TestMandalartService_UpsertCellBounds(t *testing.T) {
	svc := mandalart.NewService(&mocks.MandalartRepository{}, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.UpsertCell(ctx, "t1", "alice", "m1", 9, 0, "x"), mandalart.ErrInvalidCell)
	require.ErrorIs(t, svc.UpsertCell(ctx, "t1", "alice", "m1", 0, -1, "x"), mandalart.ErrInvalidCell)
}

func TestMandalartService_GetUnknown(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.MandalartRepository{}
	repo.On("Get", ctx, "t1", "m1").Return((*mandalart.Mandalart)(nil), repository.ErrNotFound)

	svc := mandalart.NewService(repo, nil)
	_, err := svc.Get(ctx, "t1", "alice", "m1")
	require.ErrorIs(t, err, mandalart.ErrNotFound)
}

func TestMandalartService_FillSubgoals(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.MandalartRepository{}
	repo.On("Get", ctx, "t1", "m1").
		Return(&mandalart.Mandalart{ID: "m1", TenantID: "t1", OwnerID: "alice"}, nil)

	var written []mandalart.Cell
	repo.On("UpsertCell", ctx, "t1", mock.Anything).Run(func(args mock.Arguments) {
		written = append(written, *args.Get(2).(*mandalart.Cell))
	}).Return(nil)

	subgoals := []string{"g0", "g1", "g2", "g3", "g4", "g5", "g6", "g7"}
	svc := mandalart.NewService(repo, nil)
	require.NoError(t, svc.FillSubgoals(ctx, "t1", "alice", "m1", subgoals))

	// Each subgoal lands twice: center block outer cell plus its own block's
	// center, skipping the center positions.
	require.Len(t, written, 16)
	for _, c := range written {
		if c.Block == mandalart.CenterBlock {
			require.NotEqual(t, mandalart.CenterCell, c.Position)
		} else {
			require.Equal(t, mandalart.CenterCell, c.Position)
		}
	}

	// The mirror blocks cover every block except the center.
	mirrored := make(map[int]string)
	for _, c := range written {
		if c.Block != mandalart.CenterBlock {
			mirrored[c.Block] = c.Content
		}
	}
	require.Len(t, mirrored, 8)
	require.NotContains(t, mirrored, mandalart.CenterBlock)
	require.Equal(t, "g0", mirrored[0])
	require.Equal(t, "g4", mirrored[5])
}
