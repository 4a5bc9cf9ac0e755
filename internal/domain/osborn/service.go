package osborn

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

// Service handles Osborn checklist operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a checklist service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create allocates a checklist for the theme.
func (s *Service) Create(ctx context.Context, tenantID, ownerID, theme string) (*Checklist, error) {
	if strings.TrimSpace(theme) == "" {
		return nil, fmt.Errorf("%w: theme is required", ErrInvalidInput)
	}

	now := time.Now()
	c := &Checklist{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		OwnerID:   ownerID,
		Theme:     theme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tenantID, c); err != nil {
		return nil, fmt.Errorf("creating checklist: %w", err)
	}
	return c, nil
}

// Get returns a checklist with its answers. Owner only.
func (s *Service) Get(ctx context.Context, tenantID, userID, id string) (*Sheet, error) {
	c, err := s.getOwned(ctx, tenantID, userID, id)
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.ListAnswers(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	return &Sheet{Checklist: *c, Answers: answers}, nil
}

// List returns the user's checklists, newest first.
func (s *Service) List(ctx context.Context, tenantID, userID string) ([]Checklist, error) {
	list, err := s.repo.ListByOwner(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing checklists: %w", err)
	}
	return list, nil
}

// UpsertAnswer records the answer for one lens, replacing any previous one.
func (s *Service) UpsertAnswer(ctx context.Context, tenantID, userID, id string, lens Lens, content string) error {
	if !lens.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLens, lens)
	}
	if _, err := s.getOwned(ctx, tenantID, userID, id); err != nil {
		return err
	}

	a := &Answer{
		ChecklistID: id,
		Lens:        lens,
		Content:     content,
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.UpsertAnswer(ctx, tenantID, a); err != nil {
		return fmt.Errorf("writing answer: %w", err)
	}
	return nil
}

// FillAnswers writes generated answers keyed by lens. Used by the assist
// worker; unknown lenses are skipped.
func (s *Service) FillAnswers(ctx context.Context, tenantID, userID, id string, answers map[Lens]string) error {
	if _, err := s.getOwned(ctx, tenantID, userID, id); err != nil {
		return err
	}

	now := time.Now()
	for _, lens := range Lenses {
		content, ok := answers[lens]
		if !ok || strings.TrimSpace(content) == "" {
			continue
		}
		a := &Answer{ChecklistID: id, Lens: lens, Content: content, UpdatedAt: now}
		if err := s.repo.UpsertAnswer(ctx, tenantID, a); err != nil {
			return fmt.Errorf("writing %s answer: %w", lens, err)
		}
	}
	return nil
}

// Delete removes a checklist and its answers. Owner only.
func (s *Service) Delete(ctx context.Context, tenantID, userID, id string) error {
	if _, err := s.getOwned(ctx, tenantID, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("deleting checklist: %w", err)
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, tenantID, userID, id string) (*Checklist, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty checklist id", ErrInvalidInput)
	}
	c, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading checklist: %w", err)
	}
	if c.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return c, nil
}
