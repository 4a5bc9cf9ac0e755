package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Brainwriting sessions
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    usage_mode TEXT NOT NULL CHECK(usage_mode IN ('broadcast', 'team')),
    title TEXT NOT NULL,
    theme TEXT NOT NULL,
    description TEXT,
    invite_token TEXT NOT NULL UNIQUE,
    invite_active INTEGER NOT NULL DEFAULT 1,
    results_public INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tenant_sessions ON sessions(tenant_id);
CREATE INDEX IF NOT EXISTS idx_owner_sessions ON sessions(tenant_id, owner_id);

-- Session membership, one row per (session, user)
CREATE TABLE IF NOT EXISTS participants (
    session_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    joined_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, user_id),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

-- Lockable sheets. A sheet is locked iff holder_id is set and
-- lock_expires_at is in the future. Expiry is stored as unix milliseconds so
-- the conditional lock updates compare against it directly.
CREATE TABLE IF NOT EXISTS sheets (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    holder_id TEXT,
    lock_expires_at INTEGER,
    UNIQUE (session_id, seq),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_session_sheets ON sheets(session_id);

-- Grid cells, one row per (sheet, row, col)
CREATE TABLE IF NOT EXISTS inputs (
    session_id TEXT NOT NULL,
    sheet_id TEXT NOT NULL,
    author_id TEXT NOT NULL,
    row_idx INTEGER NOT NULL,
    col_idx INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (sheet_id, row_idx, col_idx),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
    FOREIGN KEY (sheet_id) REFERENCES sheets(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_session_inputs ON inputs(session_id);

-- Mandalart grids
CREATE TABLE IF NOT EXISTS mandalarts (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    theme TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_owner_mandalarts ON mandalarts(tenant_id, owner_id);

CREATE TABLE IF NOT EXISTS mandalart_cells (
    mandalart_id TEXT NOT NULL,
    block INTEGER NOT NULL,
    position INTEGER NOT NULL,
    content TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (mandalart_id, block, position),
    FOREIGN KEY (mandalart_id) REFERENCES mandalarts(id) ON DELETE CASCADE
);

-- Osborn checklists
CREATE TABLE IF NOT EXISTS checklists (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    theme TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_owner_checklists ON checklists(tenant_id, owner_id);

CREATE TABLE IF NOT EXISTS checklist_answers (
    checklist_id TEXT NOT NULL,
    lens TEXT NOT NULL,
    content TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (checklist_id, lens),
    FOREIGN KEY (checklist_id) REFERENCES checklists(id) ON DELETE CASCADE
);

-- Bearer tokens issued by the auth collaborator
CREATE TABLE IF NOT EXISTS api_tokens (
    token_hash TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_tenant_tokens ON api_tokens(tenant_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
