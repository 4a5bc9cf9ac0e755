package osborn

import "context"

// Repository provides persistence for checklists and their answers.
type Repository interface {
	Create(ctx context.Context, tenantID string, c *Checklist) error
	Get(ctx context.Context, tenantID, id string) (*Checklist, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]Checklist, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpsertAnswer(ctx context.Context, tenantID string, a *Answer) error
	ListAnswers(ctx context.Context, tenantID, checklistID string) ([]Answer, error)
}
