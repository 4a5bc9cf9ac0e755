package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

// ChecklistRepository implements repository.ChecklistRepository for SQLite
type ChecklistRepository struct {
	db *DB
}

// NewChecklistRepository creates a new ChecklistRepository
func NewChecklistRepository(db *DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// Create creates a new checklist
func (r *ChecklistRepository) Create(ctx context.Context, tenantID string, c *osborn.Checklist) error {
	query := `
		INSERT INTO checklists (id, tenant_id, owner_id, theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, tenantID, c.OwnerID, c.Theme, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create checklist: %w", err)
	}
	return nil
}

// Get retrieves a checklist by ID
func (r *ChecklistRepository) Get(ctx context.Context, tenantID, id string) (*osborn.Checklist, error) {
	query := `
		SELECT id, tenant_id, owner_id, theme, created_at, updated_at
		FROM checklists
		WHERE id = ? AND tenant_id = ?
	`

	var c osborn.Checklist
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&c.ID, &c.TenantID, &c.OwnerID, &c.Theme, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return &c, nil
}

// ListByOwner returns a user's checklists, newest first
func (r *ChecklistRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]osborn.Checklist, error) {
	query := `
		SELECT id, tenant_id, owner_id, theme, created_at, updated_at
		FROM checklists
		WHERE tenant_id = ? AND owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer rows.Close()

	var list []osborn.Checklist
	for rows.Next() {
		var c osborn.Checklist
		if err := rows.Scan(&c.ID, &c.TenantID, &c.OwnerID, &c.Theme, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklists: %w", err)
	}

	return list, nil
}

// Delete removes a checklist; answers cascade
func (r *ChecklistRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM checklists WHERE id = ? AND tenant_id = ?`, id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
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

// UpsertAnswer writes an answer, replacing previous content for the lens
func (r *ChecklistRepository) UpsertAnswer(ctx context.Context, tenantID string, a *osborn.Answer) error {
	query := `
		INSERT INTO checklist_answers (checklist_id, lens, content, updated_at)
		SELECT ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM checklists WHERE id = ? AND tenant_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		a.ChecklistID, a.Lens, a.Content, a.UpdatedAt,
		a.ChecklistID, tenantID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			update := `
				UPDATE checklist_answers
				SET content = ?, updated_at = ?
				WHERE checklist_id = ? AND lens = ?
			`
			if _, updateErr := r.db.ExecContext(ctx, update,
				a.Content, a.UpdatedAt, a.ChecklistID, a.Lens,
			); updateErr != nil {
				return fmt.Errorf("failed to overwrite answer: %w", updateErr)
			}
			return nil
		}
		return fmt.Errorf("failed to write answer: %w", err)
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

// ListAnswers returns a checklist's answers
func (r *ChecklistRepository) ListAnswers(ctx context.Context, tenantID, checklistID string) ([]osborn.Answer, error) {
	query := `
		SELECT a.checklist_id, a.lens, a.content, a.updated_at
		FROM checklist_answers a
		JOIN checklists c ON c.id = a.checklist_id
		WHERE a.checklist_id = ? AND c.tenant_id = ?
		ORDER BY a.lens
	`

	rows, err := r.db.QueryContext(ctx, query, checklistID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []osborn.Answer
	for rows.Next() {
		var a osborn.Answer
		if err := rows.Scan(&a.ChecklistID, &a.Lens, &a.Content, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	return answers, nil
}
