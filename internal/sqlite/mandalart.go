package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

// MandalartRepository implements repository.MandalartRepository for SQLite
type MandalartRepository struct {
	db *DB
}

// NewMandalartRepository creates a new MandalartRepository
func NewMandalartRepository(db *DB) *MandalartRepository {
	return &MandalartRepository{db: db}
}

// Create creates a new mandalart
func (r *MandalartRepository) Create(ctx context.Context, tenantID string, m *mandalart.Mandalart) error {
	query := `
		INSERT INTO mandalarts (id, tenant_id, owner_id, theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, tenantID, m.OwnerID, m.Theme, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create mandalart: %w", err)
	}
	return nil
}

// Get retrieves a mandalart by ID
func (r *MandalartRepository) Get(ctx context.Context, tenantID, id string) (*mandalart.Mandalart, error) {
	query := `
		SELECT id, tenant_id, owner_id, theme, created_at, updated_at
		FROM mandalarts
		WHERE id = ? AND tenant_id = ?
	`

	var m mandalart.Mandalart
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&m.ID, &m.TenantID, &m.OwnerID, &m.Theme, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mandalart: %w", err)
	}
	return &m, nil
}

// ListByOwner returns a user's mandalarts, newest first
func (r *MandalartRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]mandalart.Mandalart, error) {
	query := `
		SELECT id, tenant_id, owner_id, theme, created_at, updated_at
		FROM mandalarts
		WHERE tenant_id = ? AND owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mandalarts: %w", err)
	}
	defer rows.Close()

	var list []mandalart.Mandalart
	for rows.Next() {
		var m mandalart.Mandalart
		if err := rows.Scan(&m.ID, &m.TenantID, &m.OwnerID, &m.Theme, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mandalart: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mandalarts: %w", err)
	}

	return list, nil
}

// Delete removes a mandalart; cells cascade
func (r *MandalartRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM mandalarts WHERE id = ? AND tenant_id = ?`, id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete mandalart: %w", err)
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

// UpsertCell writes a cell, replacing previous content at (block, position)
func (r *MandalartRepository) UpsertCell(ctx context.Context, tenantID string, cell *mandalart.Cell) error {
	query := `
		INSERT INTO mandalart_cells (mandalart_id, block, position, content, updated_at)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM mandalarts WHERE id = ? AND tenant_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		cell.MandalartID, cell.Block, cell.Position, cell.Content, cell.UpdatedAt,
		cell.MandalartID, tenantID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			update := `
				UPDATE mandalart_cells
				SET content = ?, updated_at = ?
				WHERE mandalart_id = ? AND block = ? AND position = ?
			`
			if _, updateErr := r.db.ExecContext(ctx, update,
				cell.Content, cell.UpdatedAt, cell.MandalartID, cell.Block, cell.Position,
			); updateErr != nil {
				return fmt.Errorf("failed to overwrite cell: %w", updateErr)
			}
			return nil
		}
		return fmt.Errorf("failed to write cell: %w", err)
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

// ListCells returns a mandalart's cells ordered by block and position
func (r *MandalartRepository) ListCells(ctx context.Context, tenantID, mandalartID string) ([]mandalart.Cell, error) {
	query := `
		SELECT c.mandalart_id, c.block, c.position, c.content, c.updated_at
		FROM mandalart_cells c
		JOIN mandalarts m ON m.id = c.mandalart_id
		WHERE c.mandalart_id = ? AND m.tenant_id = ?
		ORDER BY c.block, c.position
	`

	rows, err := r.db.QueryContext(ctx, query, mandalartID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells: %w", err)
	}
	defer rows.Close()

	var cells []mandalart.Cell
	for rows.Next() {
		var c mandalart.Cell
		if err := rows.Scan(&c.MandalartID, &c.Block, &c.Position, &c.Content, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cells: %w", err)
	}

	return cells, nil
}
