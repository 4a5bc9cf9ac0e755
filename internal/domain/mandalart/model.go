package mandalart

import "time"

// Grid dimensions: nine blocks of nine cells. Block 4 is the center block;
// its center cell carries the theme and its outer cells the eight subgoals.
// Each outer block's center mirrors one subgoal and its outer cells hold
// concrete actions.
const (
	Blocks        = 9
	CellsPerBlock = 9
	CenterBlock   = 4
	CenterCell    = 4
)

// Mandalart is a 9x9 goal-decomposition grid owned by a single user.
type Mandalart struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	OwnerID   string    `json:"owner_id"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cell is one of the 81 grid cells, keyed by (block, position).
type Cell struct {
	MandalartID string    `json:"mandalart_id"`
	Block       int       `json:"block"`
	Position    int       `json:"position"`
	Content     string    `json:"content"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Grid is a mandalart with its filled cells.
type Grid struct {
	Mandalart Mandalart `json:"mandalart"`
	Cells     []Cell    `json:"cells"`
}
