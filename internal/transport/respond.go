package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain rejections to 4xx reason codes; anything unmatched
// is an infrastructure fault and surfaces as a 500, safe to retry from
// scratch because the operation's transaction did not commit.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, brainwriting.ErrSessionNotFound),
		errors.Is(err, brainwriting.ErrSheetNotFound),
		errors.Is(err, mandalart.ErrNotFound),
		errors.Is(err, osborn.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, brainwriting.ErrSessionFull):
		status, code = http.StatusConflict, "session_full"
	case errors.Is(err, brainwriting.ErrSheetLocked):
		status, code = http.StatusConflict, "sheet_locked"
	case errors.Is(err, brainwriting.ErrWrongTurn):
		status, code = http.StatusConflict, "wrong_turn"
	case errors.Is(err, brainwriting.ErrAlreadyStarted):
		status, code = http.StatusConflict, "already_started"
	case errors.Is(err, brainwriting.ErrNotStarted):
		status, code = http.StatusConflict, "not_started"
	case errors.Is(err, brainwriting.ErrNotParticipant),
		errors.Is(err, brainwriting.ErrNotOwner),
		errors.Is(err, brainwriting.ErrInviteInactive),
		errors.Is(err, mandalart.ErrNotOwner),
		errors.Is(err, osborn.ErrNotOwner):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, brainwriting.ErrInvalidCell),
		errors.Is(err, mandalart.ErrInvalidCell):
		status, code = http.StatusBadRequest, "invalid_cell"
	case errors.Is(err, brainwriting.ErrInvalidInput),
		errors.Is(err, brainwriting.ErrWrongMode),
		errors.Is(err, mandalart.ErrInvalidInput),
		errors.Is(err, osborn.ErrInvalidInput),
		errors.Is(err, osborn.ErrUnknownLens):
		status, code = http.StatusBadRequest, "invalid_input"
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: err.Error()}})
}
