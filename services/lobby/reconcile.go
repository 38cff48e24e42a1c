package lobby

import (
	models "Sweatmate/models/postgres"
	"Sweatmate/services/broadcast"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ReconcileMembership idempotently removes a user from every lobby where
// they are still considered active, running the same leave/transfer/close
// logic as LeaveLobby per lobby. It reconciles via two independent lookups —
// membership rows and lobbies that name the user as initiator — so a
// half-written state from an earlier crash is still found. Returns the
// number of lobbies cleaned.
func (r *Registry) ReconcileMembership(userID string) (int, error) {
	return r.ReconcileMembershipExcept(userID, "")
}

// ReconcileMembershipExcept is ReconcileMembership with one lobby exempted
// from cleanup. Callers acting on a specific lobby pass that lobby's id, so
// an existing membership there is left intact for their own checks to see
// instead of being silently evicted.
func (r *Registry) ReconcileMembershipExcept(userID, exceptLobbyID string) (int, error) {
	lobbyIDs, err := r.lobbiesNeedingCleanup(userID)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, lobbyID := range lobbyIDs {
		if lobbyID == exceptLobbyID {
			continue
		}
		var evs []event
		var closed bool

		err := r.db.Transaction(func(tx *gorm.DB) error {
			lobby, err := r.lockLobby(tx, lobbyID)
			if err != nil {
				if err == ErrLobbyNotFound {
					return nil // Raced with deletion, nothing to do
				}
				return err
			}
			if lobby.IsTerminal() {
				return nil
			}

			err = r.removeMemberLocked(tx, lobby, userID, models.MemberStatusLeft, "membership reconciled", &evs)
			if err == ErrNotMember {
				// Initiator of a lobby without an active membership row:
				// inconsistent state, repair the lobby side only
				if lobby.InitiatorID == userID {
					log.Printf("[RECONCILE-WARN] User %s initiates lobby %s without an active membership row", userID, lobbyID)
					return r.repairOrphanedInitiator(tx, lobby, &evs)
				}
				return nil
			}
			if err != nil {
				return err
			}
			closed = lobby.IsTerminal()
			return nil
		})
		if err != nil {
			return cleaned, fmt.Errorf("error reconciling lobby %s: %v", lobbyID, err)
		}

		if len(evs) > 0 {
			cleaned++
			r.publishAll(evs)
			if closed {
				r.stopSessionIfAny(lobbyID)
			} else {
				r.publishState(lobbyID)
			}
		}
	}

	if cleaned > 0 {
		log.Printf("[RECONCILE] User %s removed from %d lobbies", userID, cleaned)
	}
	return cleaned, nil
}

// ForceLeaveAll is the recovery command callers use when a Conflict error
// tells them they are stuck in a lobby they believe they left.
func (r *Registry) ForceLeaveAll(userID string) (int, error) {
	return r.ReconcileMembership(userID)
}

// lobbiesNeedingCleanup unions the two lookup strategies.
func (r *Registry) lobbiesNeedingCleanup(userID string) ([]string, error) {
	seen := map[string]bool{}
	var ids []string

	memberships, err := r.activeMembershipsOf(r.db, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if !seen[m.LobbyID] {
			seen[m.LobbyID] = true
			ids = append(ids, m.LobbyID)
		}
	}

	var owned []models.WorkoutLobby
	err = r.db.Where("initiator_id = ? AND status IN ?", userID,
		[]string{models.LobbyStatusWaiting, models.LobbyStatusStarting}).Find(&owned).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching initiated lobbies: %v", err)
	}
	for _, l := range owned {
		if !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}
	return ids, nil
}

// repairOrphanedInitiator fixes a lobby whose initiator has no active
// membership row: pass the role to a real member, or close the lobby.
func (r *Registry) repairOrphanedInitiator(tx *gorm.DB, lobby *models.WorkoutLobby, evs *[]event) error {
	remaining, err := r.activeMembers(tx, lobby.ID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := tx.Model(&models.WorkoutLobby{}).Where("id = ?", lobby.ID).
			Update("status", models.LobbyStatusCancelled).Error; err != nil {
			return fmt.Errorf("error cancelling orphaned lobby: %v", err)
		}
		*evs = append(*evs, event{
			channel: lobby.ID,
			name:    broadcast.EventLobbyDeleted,
			payload: CommandAck{SessionID: lobby.ID},
		})
		return nil
	}

	heir := remaining[0]
	if err := tx.Model(&models.WorkoutLobby{}).Where("id = ?", lobby.ID).
		Update("initiator_id", heir.UserID).Error; err != nil {
		return fmt.Errorf("error transferring orphaned initiator role: %v", err)
	}
	*evs = append(*evs, event{
		channel: lobby.ID,
		name:    broadcast.EventInitiatorTransfer,
		payload: TransferNotice{SessionID: lobby.ID, OldInitiatorID: lobby.InitiatorID, NewInitiatorID: heir.UserID},
	})
	return nil
}
