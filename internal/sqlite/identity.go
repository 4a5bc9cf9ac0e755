package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

// IdentityRepository resolves bearer-token hashes to identities. Token
// issuance belongs to the external OAuth collaborator; this side only reads.
type IdentityRepository struct {
	db *DB
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(db *DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// ResolveToken looks up a token hash and returns the identity it names.
func (r *IdentityRepository) ResolveToken(ctx context.Context, tokenHash string) (*repository.Identity, error) {
	query := `SELECT tenant_id, user_id FROM api_tokens WHERE token_hash = ?`

	var id repository.Identity
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&id.TenantID, &id.UserID)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	// Best effort; a failed touch must not fail authentication.
	_, _ = r.db.ExecContext(ctx,
		`UPDATE api_tokens SET last_used = ? WHERE token_hash = ?`, time.Now(), tokenHash,
	)

	return &id, nil
}

// InsertToken registers a token hash for an identity, used by provisioning
// and tests.
func (r *IdentityRepository) InsertToken(ctx context.Context, tokenHash, tenantID, userID, description string) error {
	query := `
		INSERT INTO api_tokens (token_hash, tenant_id, user_id, description)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, tenantID, userID, description); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}
