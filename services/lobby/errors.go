package lobby

import "net/http"

// Kind classifies a command error for transport mapping and retry policy.
type Kind int

const (
	KindNotFound Kind = iota
	KindConflict
	KindForbidden
	KindPreconditionFailed
	KindUpstream
	KindInternal
)

// Error is the synchronous failure value every lobby, invitation and session
// command returns. Errors are never used for control flow between
// components; the tick loop logs and isolates them instead.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	// NotFound
	ErrLobbyNotFound      = newError(KindNotFound, "lobby_not_found", "lobby not found")
	ErrInvitationNotFound = newError(KindNotFound, "invitation_not_found", "invitation not found")
	ErrSessionNotFound    = newError(KindNotFound, "session_not_found", "workout session not found")

	// Conflict
	ErrAlreadyInLobby        = newError(KindConflict, "already_in_lobby", "user is already in another active lobby")
	ErrAlreadyMember         = newError(KindConflict, "already_member", "user is already a member of this lobby")
	ErrDuplicatePending      = newError(KindConflict, "duplicate_pending_invitation", "a pending invitation for this user already exists")
	ErrAlreadyInitiator      = newError(KindConflict, "already_initiator", "user is already the lobby initiator")
	ErrSessionNotRunning     = newError(KindConflict, "session_not_running", "session is not running")
	ErrSessionNotPaused      = newError(KindConflict, "session_not_paused", "session is not paused")
	ErrSessionAlreadyStopped = newError(KindConflict, "session_terminal", "session has already finished")

	// Forbidden
	ErrNotInitiator   = newError(KindForbidden, "not_initiator", "only the lobby initiator can do that")
	ErrCannotKickSelf = newError(KindForbidden, "cannot_kick_self", "the initiator cannot kick themselves")
	ErrTransferToSelf = newError(KindForbidden, "transfer_to_self", "cannot transfer the initiator role to yourself")
	ErrNotInvited     = newError(KindForbidden, "not_invited", "invitation belongs to another user")

	// PreconditionFailed
	ErrNotMember           = newError(KindPreconditionFailed, "not_member", "user is not an active member of this lobby")
	ErrTargetNotMember     = newError(KindPreconditionFailed, "target_not_member", "target user is not an active member of this lobby")
	ErrLobbyInactive       = newError(KindPreconditionFailed, "lobby_inactive", "lobby is no longer accepting members")
	ErrInvitationNotActive = newError(KindPreconditionFailed, "invitation_not_pending", "invitation is no longer pending")
	ErrNotAllReady         = newError(KindPreconditionFailed, "not_all_ready", "every member must be ready before starting")
	ErrInsufficientMembers = newError(KindPreconditionFailed, "insufficient_members", "at least two active members are required to start")
	ErrInvalidWorkout      = newError(KindPreconditionFailed, "workout_payload_invalid", "workout payload has no readable exercise list")
)

// HTTPStatus maps a command error to the status code controllers respond
// with. Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	e, ok := err.(*Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindPreconditionFailed:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
