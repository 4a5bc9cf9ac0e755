package brainwriting

import "time"

// UsageMode selects the lifecycle rules of a session. It is immutable after
// creation: broadcast sessions share one sheet through an invite link, team
// sessions give every participant a sheet and rotate them.
type UsageMode string

const (
	ModeBroadcast UsageMode = "broadcast"
	ModeTeam      UsageMode = "team"
)

// Valid reports whether the mode is one of the known usage modes.
func (m UsageMode) Valid() bool {
	return m == ModeBroadcast || m == ModeTeam
}

// Session is one brainwriting exercise.
type Session struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	OwnerID       string    `json:"owner_id"`
	Mode          UsageMode `json:"mode"`
	Title         string    `json:"title"`
	Theme         string    `json:"theme"`
	Description   string    `json:"description,omitempty"`
	InviteToken   string    `json:"invite_token"`
	InviteActive  bool      `json:"invite_active"`
	ResultsPublic bool      `json:"results_public"`
	CreatedAt     time.Time `json:"created_at"`
}

// Participant is a membership record. At most one exists per (session, user).
type Participant struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Sheet is a lockable editable surface. A sheet is locked iff HolderID is
// non-nil and LockExpiresAt is in the future; an expired lock counts as
// unlocked and is lazily reclaimed on the next access.
type Sheet struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	Seq           int        `json:"seq"`
	HolderID      *string    `json:"holder_id,omitempty"`
	LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`
}

// LockedBy returns the current holder, or "" when the sheet is unlocked or
// the lock has expired as of now.
func (s *Sheet) LockedBy(now time.Time) string {
	if s.HolderID == nil || s.LockExpiresAt == nil {
		return ""
	}
	if !s.LockExpiresAt.After(now) {
		return ""
	}
	return *s.HolderID
}

// Input is one grid cell's content, unique per (sheet, row, col).
type Input struct {
	SessionID string    `json:"session_id"`
	SheetID   string    `json:"sheet_id"`
	AuthorID  string    `json:"author_id"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LockStatus describes a failed acquisition: who holds the sheet and until when.
type LockStatus struct {
	Granted   bool       `json:"granted"`
	HeldBy    string     `json:"held_by,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Detail is the full state of a session annotated for one viewer, used to
// render the current board. Clients treat events as invalidation signals and
// re-fetch this.
type Detail struct {
	Session      Session       `json:"session"`
	Participants []Participant `json:"participants"`
	Sheets       []Sheet       `json:"sheets"`
	Inputs       []Input       `json:"inputs"`
	Viewer       ViewerState   `json:"viewer"`
	Complete     bool          `json:"complete"`
}

// ViewerState annotates a Detail with the requesting user's standing.
type ViewerState struct {
	UserID      string  `json:"user_id"`
	Joined      bool    `json:"joined"`
	YourTurn    bool    `json:"your_turn"`
	HeldSheetID *string `json:"held_sheet_id,omitempty"`
	CurrentRow  int     `json:"current_row"`
}

// JoinResult reports the outcome of a successful join.
type JoinResult struct {
	SessionID      string  `json:"session_id"`
	SheetID        *string `json:"sheet_id,omitempty"`
	AlreadyJoined  bool    `json:"already_joined"`
	ParticipantNum int     `json:"participant_num"`
}
