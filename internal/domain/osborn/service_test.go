package osborn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
	"github.com/kutahiru/idea-labo-sub002/internal/repository/mocks"
)

func TestLens_Valid(t *testing.T) {
	for _, lens := range osborn.Lenses {
		require.True(t, lens.Valid(), "lens %s", lens)
	}
	require.False(t, osborn.Lens("invert").Valid())
	require.Len(t, osborn.Lenses, 9)
}

func TestChecklistService_CreateValidation(t *testing.T) {
	svc := osborn.NewService(&mocks.ChecklistRepository{}, nil)
	_, err := svc.Create(context.Background(), "t1", "alice", "")
	require.ErrorIs(t, err, osborn.ErrInvalidInput)
}

func TestChecklistService_UpsertAnswerUnknownLens(t *testing.T) {
	svc := osborn.NewService(&mocks.ChecklistRepository{}, nil)
	err := svc.UpsertAnswer(context.Background(), "t1", "alice", "c1", "invert", "x")
	require.ErrorIs(t, err, osborn.ErrUnknownLens)
}

func TestChecklistService_OwnerOnly(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ChecklistRepository{}
	repo.On("Get", ctx, "t1", "c1").
		Return(&osborn.Checklist{ID: "c1", TenantID: "t1", OwnerID: "alice"}, nil)

	svc := osborn.NewService(repo, nil)
	_, err := svc.Get(ctx, "t1", "bob", "c1")
	require.ErrorIs(t, err, osborn.ErrNotOwner)

	err = svc.UpsertAnswer(ctx, "t1", "bob", "c1", osborn.LensAdapt, "x")
	require.ErrorIs(t, err, osborn.ErrNotOwner)
}

func TestChecklistService_GetUnknown(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ChecklistRepository{}
	repo.On("Get", ctx, "t1", "c1").Return((*osborn.Checklist)(nil), repository.ErrNotFound)

	svc := osborn.NewService(repo, nil)
	_, err := svc.Get(ctx, "t1", "alice", "c1")
	require.ErrorIs(t, err, osborn.ErrNotFound)
}

func TestChecklistService_FillAnswersSkipsEmpty(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ChecklistRepository{}
	repo.On("Get", ctx, "t1", "c1").
		Return(&osborn.Checklist{ID: "c1", TenantID: "t1", OwnerID: "alice"}, nil)

	var written []osborn.Answer
	repo.On("UpsertAnswer", ctx, "t1", mock.Anything).Run(func(args mock.Arguments) {
		written = append(written, *args.Get(2).(*osborn.Answer))
	}).Return(nil)

	svc := osborn.NewService(repo, nil)
	err := svc.FillAnswers(ctx, "t1", "alice", "c1", map[osborn.Lens]string{
		osborn.LensAdapt:  "borrow from thermos design",
		osborn.LensMinify: "  ",
	})
	require.NoError(t, err)
	require.Len(t, written, 1)
	require.Equal(t, osborn.LensAdapt, written[0].Lens)
}
