package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{brainwriting.ErrSessionNotFound, http.StatusNotFound, "not_found"},
		{brainwriting.ErrSheetNotFound, http.StatusNotFound, "not_found"},
		{mandalart.ErrNotFound, http.StatusNotFound, "not_found"},
		{osborn.ErrNotFound, http.StatusNotFound, "not_found"},
		{brainwriting.ErrSessionFull, http.StatusConflict, "session_full"},
		{brainwriting.ErrSheetLocked, http.StatusConflict, "sheet_locked"},
		{fmt.Errorf("%w: held by bob", brainwriting.ErrSheetLocked), http.StatusConflict, "sheet_locked"},
		{brainwriting.ErrWrongTurn, http.StatusConflict, "wrong_turn"},
		{brainwriting.ErrAlreadyStarted, http.StatusConflict, "already_started"},
		{brainwriting.ErrNotStarted, http.StatusConflict, "not_started"},
		{brainwriting.ErrNotParticipant, http.StatusForbidden, "forbidden"},
		{brainwriting.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{brainwriting.ErrInviteInactive, http.StatusForbidden, "forbidden"},
		{mandalart.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{brainwriting.ErrInvalidCell, http.StatusBadRequest, "invalid_cell"},
		{mandalart.ErrInvalidCell, http.StatusBadRequest, "invalid_cell"},
		{brainwriting.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{osborn.ErrUnknownLens, http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, tc.code, body.Error.Code)
		})
	}
}
