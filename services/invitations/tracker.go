package invitations

import (
	workout_constants "Sweatmate/constants/workout"
	models "Sweatmate/models/postgres"
	"Sweatmate/services/broadcast"
	"Sweatmate/services/identity"
	"Sweatmate/services/lobby"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tracker owns the time-boxed invitation handshake, decoupled from lobby
// membership. Expiry is passive: pending-ness is always recomputed against
// the wall clock, never trusted from the stored status column.
type Tracker struct {
	db        *gorm.DB
	registry  *lobby.Registry
	publisher broadcast.Publisher
	resolver  identity.Resolver
	cfg       workout_constants.TimerConfig
	now       func() time.Time
}

func NewTracker(db *gorm.DB, registry *lobby.Registry, publisher broadcast.Publisher,
	resolver identity.Resolver, cfg workout_constants.TimerConfig) *Tracker {
	return &Tracker{
		db:        db,
		registry:  registry,
		publisher: publisher,
		resolver:  resolver,
		cfg:       cfg,
		now:       time.Now,
	}
}

// InvitationView is the broadcast/API shape of an invitation.
type InvitationView struct {
	InvitationID  string          `json:"invitation_id"`
	SessionID     string          `json:"session_id"`
	GroupID       string          `json:"group_id"`
	InitiatorID   string          `json:"initiator_id"`
	InitiatorName string          `json:"initiator_name"`
	InvitedUserID string          `json:"invited_user_id"`
	WorkoutData   json.RawMessage `json:"workout_data"`
	SentAt        time.Time       `json:"sent_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

func (t *Tracker) view(inv *models.WorkoutInvitation) InvitationView {
	return InvitationView{
		InvitationID:  inv.ID,
		SessionID:     inv.LobbyID,
		GroupID:       inv.GroupID,
		InitiatorID:   inv.InitiatorID,
		InitiatorName: t.resolver.DisplayName(inv.InitiatorID),
		InvitedUserID: inv.InvitedUserID,
		WorkoutData:   json.RawMessage(inv.WorkoutData),
		SentAt:        inv.SentAt,
		ExpiresAt:     inv.ExpiresAt,
	}
}

// Invite creates a pending invitation for a user. If the invited user is
// still active in some other lobby, that membership is reconciled away now
// so the later accept cannot collide with stale state. Membership of the
// target lobby itself is exempt from cleanup: inviting an existing member
// must fail the membership check below, not evict them first.
func (t *Tracker) Invite(lobbyID, initiatorID, invitedUserID string) (*InvitationView, error) {
	stale, err := t.registry.ReconcileMembershipExcept(invitedUserID, lobbyID)
	if err != nil {
		return nil, err
	}
	if stale > 0 {
		log.Printf("[INVITE] Cleaned %d stale memberships of %s before inviting", stale, invitedUserID)
	}

	now := t.now()
	var created models.WorkoutInvitation

	err = t.db.Transaction(func(tx *gorm.DB) error {
		var lob models.WorkoutLobby
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", lobbyID).First(&lob).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return lobby.ErrLobbyNotFound
			}
			return fmt.Errorf("error locking lobby: %v", err)
		}
		if !lob.IsJoinable(now) {
			return lobby.ErrLobbyInactive
		}
		if lob.InitiatorID != initiatorID {
			return lobby.ErrNotInitiator
		}

		var member models.LobbyMember
		err = tx.Where("lobby_id = ? AND user_id = ? AND status IN ?",
			lobbyID, invitedUserID, models.ActiveMemberStatuses).First(&member).Error
		if err == nil {
			return lobby.ErrAlreadyMember
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("error checking membership: %v", err)
		}

		// At most one live pending invitation per (session, user)
		var pending models.WorkoutInvitation
		err = tx.Where("lobby_id = ? AND invited_user_id = ? AND status = ? AND expires_at > ?",
			lobbyID, invitedUserID, models.InvitationStatusPending, now).First(&pending).Error
		if err == nil {
			return lobby.ErrDuplicatePending
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("error checking pending invitations: %v", err)
		}

		created = models.WorkoutInvitation{
			LobbyID:       lobbyID,
			GroupID:       lob.GroupID,
			InitiatorID:   initiatorID,
			InvitedUserID: invitedUserID,
			WorkoutData:   lob.WorkoutData,
			Status:        models.InvitationStatusPending,
			SentAt:        now,
			ExpiresAt:     now.Add(t.cfg.InvitationTTL),
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("error creating invitation: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INVITE] %s invited %s to lobby %s", initiatorID, invitedUserID, lobbyID)

	v := t.view(&created)
	t.publisher.Publish(broadcast.UserChannel(invitedUserID), broadcast.EventWorkoutInvitation, v)
	return &v, nil
}

// Accept turns a pending invitation into lobby membership and returns the
// session id. Any lingering membership of the accepting user in some other
// lobby is reconciled first so the user ends up in exactly one lobby; a
// membership of the inviting lobby itself is kept and the accept simply
// consumes the invitation.
func (t *Tracker) Accept(invitationID, userID string) (string, error) {
	now := t.now()

	var inv models.WorkoutInvitation
	err := t.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", invitationID).First(&inv).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return lobby.ErrInvitationNotFound
			}
			return fmt.Errorf("error locking invitation: %v", err)
		}
		if inv.InvitedUserID != userID {
			return lobby.ErrNotInvited
		}
		if !inv.IsPending(now) {
			return lobby.ErrInvitationNotActive
		}

		return tx.Model(&models.WorkoutInvitation{}).Where("id = ?", invitationID).
			Updates(map[string]interface{}{
				"status":       models.InvitationStatusAccepted,
				"responded_at": now,
			}).Error
	})
	if err != nil {
		if err == lobby.ErrInvitationNotActive {
			t.markExpired(&inv, now)
		}
		return "", err
	}

	if _, err := t.registry.ReconcileMembershipExcept(userID, inv.LobbyID); err != nil {
		// The accept was already committed; put the invitation back so the
		// user can retry
		t.restorePending(invitationID)
		return "", err
	}

	if _, err := t.registry.JoinLobby(inv.LobbyID, userID); err != nil {
		// Joined by hand between invite and accept: membership already
		// holds, the invitation is simply consumed
		if err != lobby.ErrAlreadyMember {
			t.restorePending(invitationID)
			return "", err
		}
	}

	log.Printf("[INVITE] %s accepted invitation %s into lobby %s", userID, invitationID, inv.LobbyID)
	return inv.LobbyID, nil
}

// Decline refuses a pending invitation, keeping the caller's note for the
// initiator's inbox.
func (t *Tracker) Decline(invitationID, userID, reason string) error {
	now := t.now()

	var inv models.WorkoutInvitation
	err := t.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", invitationID).First(&inv).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return lobby.ErrInvitationNotFound
			}
			return fmt.Errorf("error locking invitation: %v", err)
		}
		if inv.InvitedUserID != userID {
			return lobby.ErrNotInvited
		}
		if !inv.IsPending(now) {
			return lobby.ErrInvitationNotActive
		}

		return tx.Model(&models.WorkoutInvitation{}).Where("id = ?", invitationID).
			Updates(map[string]interface{}{
				"status":        models.InvitationStatusDeclined,
				"responded_at":  now,
				"response_note": reason,
			}).Error
	})
	if err == lobby.ErrInvitationNotActive {
		t.markExpired(&inv, now)
	}
	return err
}

// ListPending returns a user's live invitations. Rows past their deadline
// are filtered out here regardless of stored status.
func (t *Tracker) ListPending(userID string) ([]InvitationView, error) {
	now := t.now()
	var rows []models.WorkoutInvitation
	err := t.db.Where("invited_user_id = ? AND status = ? AND expires_at > ?",
		userID, models.InvitationStatusPending, now).
		Order("sent_at DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error listing invitations: %v", err)
	}

	views := make([]InvitationView, len(rows))
	for i := range rows {
		views[i] = t.view(&rows[i])
	}
	return views, nil
}

// markExpired flips the stored status of an overdue pending row. Runs on its
// own connection, outside the rejecting transaction, so the bookkeeping
// survives that transaction's rollback. Pure bookkeeping: correctness never
// depends on this having happened.
func (t *Tracker) markExpired(inv *models.WorkoutInvitation, now time.Time) {
	if inv.Status != models.InvitationStatusPending {
		return
	}
	if err := t.db.Model(&models.WorkoutInvitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationStatusPending).
		Updates(map[string]interface{}{
			"status":       models.InvitationStatusExpired,
			"responded_at": now,
		}).Error; err != nil {
		log.Printf("[INVITE] Could not mark invitation %s expired: %v", inv.ID, err)
	}
}

// restorePending puts an accepted invitation back after a follow-up step
// failed, so the accept can be retried instead of being consumed for nothing.
func (t *Tracker) restorePending(invitationID string) {
	if err := t.db.Model(&models.WorkoutInvitation{}).Where("id = ?", invitationID).
		Updates(map[string]interface{}{
			"status":       models.InvitationStatusPending,
			"responded_at": nil,
		}).Error; err != nil {
		log.Printf("[INVITE-ERROR] Could not restore invitation %s: %v", invitationID, err)
	}
}
