package mandalart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kutahiru/idea-labo-sub002/internal/repoerr"
)

// Service handles mandalart operations. Mandalarts are single-owner; there is
// no locking or turn protocol here.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a mandalart service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create allocates a mandalart with the theme in its center cell.
func (s *Service) Create(ctx context.Context, tenantID, ownerID, theme string) (*Mandalart, error) {
	if strings.TrimSpace(theme) == "" {
		return nil, fmt.Errorf("%w: theme is required", ErrInvalidInput)
	}

	now := time.Now()
	m := &Mandalart{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		OwnerID:   ownerID,
		Theme:     theme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tenantID, m); err != nil {
		return nil, fmt.Errorf("creating mandalart: %w", err)
	}

	center := &Cell{
		MandalartID: m.ID,
		Block:       CenterBlock,
		Position:    CenterCell,
		Content:     theme,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertCell(ctx, tenantID, center); err != nil {
		return nil, fmt.Errorf("writing center cell: %w", err)
	}

	return m, nil
}

// Get returns a mandalart with its cells. Owner only.
func (s *Service) Get(ctx context.Context, tenantID, userID, id string) (*Grid, error) {
	m, err := s.getOwned(ctx, tenantID, userID, id)
	if err != nil {
		return nil, err
	}
	cells, err := s.repo.ListCells(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("listing cells: %w", err)
	}
	return &Grid{Mandalart: *m, Cells: cells}, nil
}

// List returns the user's mandalarts, newest first.
func (s *Service) List(ctx context.Context, tenantID, userID string) ([]Mandalart, error) {
	list, err := s.repo.ListByOwner(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing mandalarts: %w", err)
	}
	return list, nil
}

// UpsertCell writes one cell. Owner only; writes are idempotent per
// (block, position).
func (s *Service) UpsertCell(ctx context.Context, tenantID, userID, id string, block, position int, content string) error {
	if block < 0 || block >= Blocks || position < 0 || position >= CellsPerBlock {
		return ErrInvalidCell
	}
	if _, err := s.getOwned(ctx, tenantID, userID, id); err != nil {
		return err
	}

	cell := &Cell{
		MandalartID: id,
		Block:       block,
		Position:    position,
		Content:     content,
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.UpsertCell(ctx, tenantID, cell); err != nil {
		return fmt.Errorf("writing cell: %w", err)
	}
	return nil
}

// FillSubgoals writes generated subgoals into the center block's outer cells
// and mirrors each into its block's center. Used by the assist worker.
func (s *Service) FillSubgoals(ctx context.Context, tenantID, userID, id string, subgoals []string) error {
	if _, err := s.getOwned(ctx, tenantID, userID, id); err != nil {
		return err
	}

	now := time.Now()
	pos := 0
	for i, subgoal := range subgoals {
		if i >= Blocks-1 {
			break
		}
		if pos == CenterCell {
			pos++
		}
		block := i
		if block >= CenterBlock {
			block++
		}
		cells := []Cell{
			{MandalartID: id, Block: CenterBlock, Position: pos, Content: subgoal, UpdatedAt: now},
			{MandalartID: id, Block: block, Position: CenterCell, Content: subgoal, UpdatedAt: now},
		}
		for j := range cells {
			if err := s.repo.UpsertCell(ctx, tenantID, &cells[j]); err != nil {
				return fmt.Errorf("writing subgoal cell: %w", err)
			}
		}
		pos++
	}
	return nil
}

// Delete removes a mandalart and, through cascade, its cells. Owner only.
func (s *Service) Delete(ctx context.Context, tenantID, userID, id string) error {
	if _, err := s.getOwned(ctx, tenantID, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("deleting mandalart: %w", err)
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, tenantID, userID, id string) (*Mandalart, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty mandalart id", ErrInvalidInput)
	}
	m, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading mandalart: %w", err)
	}
	if m.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return m, nil
}
