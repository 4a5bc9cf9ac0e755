package mandalart

import "context"

// Repository provides persistence for mandalarts and their cells.
type Repository interface {
	Create(ctx context.Context, tenantID string, m *Mandalart) error
	Get(ctx context.Context, tenantID, id string) (*Mandalart, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]Mandalart, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpsertCell(ctx context.Context, tenantID string, cell *Cell) error
	ListCells(ctx context.Context, tenantID, mandalartID string) ([]Cell, error)
}
