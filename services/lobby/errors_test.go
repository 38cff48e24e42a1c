package lobby

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrLobbyNotFound, http.StatusNotFound},
		{ErrInvitationNotFound, http.StatusNotFound},
		{ErrSessionNotFound, http.StatusNotFound},
		{ErrAlreadyInLobby, http.StatusConflict},
		{ErrAlreadyMember, http.StatusConflict},
		{ErrDuplicatePending, http.StatusConflict},
		{ErrSessionNotRunning, http.StatusConflict},
		{ErrSessionAlreadyStopped, http.StatusConflict},
		{ErrNotInitiator, http.StatusForbidden},
		{ErrCannotKickSelf, http.StatusForbidden},
		{ErrNotInvited, http.StatusForbidden},
		{ErrNotMember, http.StatusBadRequest},
		{ErrLobbyInactive, http.StatusBadRequest},
		{ErrNotAllReady, http.StatusBadRequest},
		{ErrInsufficientMembers, http.StatusBadRequest},
		{ErrInvalidWorkout, http.StatusBadRequest},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "error %v", tc.err)
	}
}

func TestHTTPStatusUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestErrorCodesAreStable(t *testing.T) {
	// Clients switch on these strings; renaming one is a breaking change
	assert.Equal(t, "already_in_lobby", ErrAlreadyInLobby.Code)
	assert.Equal(t, "not_all_ready", ErrNotAllReady.Code)
	assert.Equal(t, "insufficient_members", ErrInsufficientMembers.Code)
	assert.Equal(t, "session_terminal", ErrSessionAlreadyStopped.Code)
}
