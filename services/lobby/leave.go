package lobby

import (
	models "Sweatmate/models/postgres"
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/broadcast"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// removeMemberLocked is the one shared implementation of "this user stops
// being a member": mark the row, cancel the user's pending invitations for
// this lobby, then keep the lobby consistent — transfer leadership to the
// earliest-joined survivor, or close the lobby when nobody is left. Must be
// called with the lobby row locked. Broadcasts are queued on evs and
// published by the caller after commit.
func (r *Registry) removeMemberLocked(tx *gorm.DB, lobby *models.WorkoutLobby,
	userID, newStatus, reason string, evs *[]event) error {

	now := r.now()
	result := tx.Model(&models.LobbyMember{}).
		Where("lobby_id = ? AND user_id = ? AND status IN ?", lobby.ID, userID, models.ActiveMemberStatuses).
		Updates(map[string]interface{}{
			"status":      newStatus,
			"left_at":     now,
			"left_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("error marking member %s: %v", newStatus, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotMember
	}

	// Pending invitations where the user is either party are dead now
	if err := tx.Model(&models.WorkoutInvitation{}).
		Where("lobby_id = ? AND status = ? AND (invited_user_id = ? OR initiator_id = ?)",
			lobby.ID, models.InvitationStatusPending, userID, userID).
		Updates(map[string]interface{}{
			"status":        models.InvitationStatusCancelled,
			"responded_at":  now,
			"response_note": reason,
		}).Error; err != nil {
		return fmt.Errorf("error cancelling invitations: %v", err)
	}

	remaining, err := r.activeMembers(tx, lobby.ID)
	if err != nil {
		return err
	}

	if len(remaining) == 0 {
		if err := tx.Model(&models.WorkoutLobby{}).Where("id = ?", lobby.ID).
			Update("status", models.LobbyStatusCompleted).Error; err != nil {
			return fmt.Errorf("error closing empty lobby: %v", err)
		}
		lobby.Status = models.LobbyStatusCompleted
		*evs = append(*evs, event{
			channel: lobby.ID,
			name:    broadcast.EventLobbyDeleted,
			payload: CommandAck{SessionID: lobby.ID},
		})
		log.Printf("[LOBBY] Lobby %s closed, last member %s left", lobby.ID, userID)
	} else if lobby.InitiatorID == userID {
		heir := remaining[0]
		if err := tx.Model(&models.WorkoutLobby{}).Where("id = ?", lobby.ID).
			Update("initiator_id", heir.UserID).Error; err != nil {
			return fmt.Errorf("error transferring initiator role: %v", err)
		}
		lobby.InitiatorID = heir.UserID
		*evs = append(*evs, event{
			channel: lobby.ID,
			name:    broadcast.EventInitiatorTransfer,
			payload: TransferNotice{SessionID: lobby.ID, OldInitiatorID: userID, NewInitiatorID: heir.UserID},
		})
		log.Printf("[LOBBY] Initiator %s left lobby %s, role passed to %s", userID, lobby.ID, heir.UserID)
	}

	*evs = append(*evs, event{
		channel: lobby.ID,
		name:    broadcast.EventMemberLeft,
		payload: StatusUpdate{SessionID: lobby.ID, UserID: userID, Status: newStatus},
	})
	return nil
}

// LeaveLobby removes the acting user from a lobby voluntarily.
func (r *Registry) LeaveLobby(lobbyID, userID string) error {
	var evs []event
	var closed bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		lobby, err := r.lockLobby(tx, lobbyID)
		if err != nil {
			return err
		}
		if err := r.removeMemberLocked(tx, lobby, userID, models.MemberStatusLeft, "left voluntarily", &evs); err != nil {
			return err
		}
		closed = lobby.IsTerminal()
		return nil
	})
	if err != nil {
		return err
	}

	r.publishAll(evs)
	if closed {
		r.stopSessionIfAny(lobbyID)
	} else {
		r.publishState(lobbyID)
	}
	return nil
}

// KickMember removes another member on the initiator's authority. The kicked
// user gets a personal event in addition to the lobby-scoped ones.
func (r *Registry) KickMember(lobbyID, initiatorID, targetID string) error {
	if initiatorID == targetID {
		return ErrCannotKickSelf
	}

	var evs []event
	var closed bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		lobby, err := r.lockLobby(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.InitiatorID != initiatorID {
			return ErrNotInitiator
		}
		if err := r.removeMemberLocked(tx, lobby, targetID, models.MemberStatusKicked, "kicked by initiator", &evs); err != nil {
			if err == ErrNotMember {
				return ErrTargetNotMember
			}
			return err
		}
		closed = lobby.IsTerminal()
		return nil
	})
	if err != nil {
		return err
	}

	r.publisher.Publish(broadcast.UserChannel(targetID), broadcast.EventMemberKicked, CommandAck{
		SessionID: lobbyID, UserID: targetID,
	})
	r.publishAll(evs)
	if closed {
		r.stopSessionIfAny(lobbyID)
	} else {
		r.publishState(lobbyID)
	}
	return nil
}

// stopSessionIfAny halts the ticking session of a lobby that just went
// terminal. Redis state is mutated outside the SQL transaction, so this runs
// only after commit; a crash in between is healed by the tick loop noticing
// the terminal lobby is gone. The read-modify-write holds the same
// per-session lock as the tick loop, so an in-flight tick cannot save a
// stale running copy back over the stop.
func (r *Registry) stopSessionIfAny(lobbyID string) {
	unlock := r.redisClient.LockSession(lobbyID)
	defer unlock()

	session, err := r.redisClient.GetWorkoutSession(lobbyID)
	if err != nil {
		// No live session for most lobbies; nothing to stop
		return
	}
	if session.IsTerminal() {
		return
	}
	session.Status = redis_models.SessionStopped
	if err := r.redisClient.SaveWorkoutSession(session); err != nil {
		log.Printf("[LOBBY-ERROR] Error stopping session %s: %v", lobbyID, err)
	}
	if err := r.redisClient.RemoveActiveSession(lobbyID); err != nil {
		log.Printf("[LOBBY-ERROR] Error deactivating session %s: %v", lobbyID, err)
	}
	r.publisher.Publish(lobbyID, broadcast.EventSessionState, session.Snapshot())
}
