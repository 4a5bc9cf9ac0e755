// Package events defines the closed set of session notifications and the
// Redis bridge that fans them out to connected clients. Events are
// invalidation signals: they carry identifiers, not authoritative state, and
// consumers re-fetch the session detail on receipt.
package events

import "time"

// Type tags an event variant on the wire.
type Type string

const (
	TypeParticipantJoined   Type = "JOINED"
	TypeSessionStarted      Type = "STARTED"
	TypeSheetRotated        Type = "ROTATED"
	TypeGenerationCompleted Type = "AI_COMPLETED"
	TypeGenerationFailed    Type = "AI_FAILED"
)

// Event is implemented by every notification variant. The set is closed;
// consumers can switch on EventType exhaustively.
type Event interface {
	EventType() Type
}

// ParticipantJoined is emitted when a user enters a session.
type ParticipantJoined struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func (ParticipantJoined) EventType() Type { return TypeParticipantJoined }

// SessionStarted is emitted when a team session's sheets are created.
type SessionStarted struct {
	SessionID  string `json:"session_id"`
	SheetCount int    `json:"sheet_count"`
}

func (SessionStarted) EventType() Type { return TypeSessionStarted }

// SheetRotated is emitted when a sheet's lock passes to the next participant.
type SheetRotated struct {
	SessionID string     `json:"session_id"`
	SheetID   string     `json:"sheet_id"`
	FromUser  string     `json:"from_user"`
	ToUser    string     `json:"to_user,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (SheetRotated) EventType() Type { return TypeSheetRotated }

// GenerationCompleted is emitted by the assist worker when AI content has
// been persisted. CorrelationID matches the id returned by the fill request.
type GenerationCompleted struct {
	CorrelationID string `json:"correlation_id"`
	TargetKind    string `json:"target_kind"`
	TargetID      string `json:"target_id"`
}

func (GenerationCompleted) EventType() Type { return TypeGenerationCompleted }

// GenerationFailed is emitted by the assist worker when generation failed.
type GenerationFailed struct {
	CorrelationID string `json:"correlation_id"`
	TargetKind    string `json:"target_kind"`
	TargetID      string `json:"target_id"`
	Reason        string `json:"reason"`
}

func (GenerationFailed) EventType() Type { return TypeGenerationFailed }
