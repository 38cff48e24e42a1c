package lobby

import (
	workout_constants "Sweatmate/constants/workout"
	models "Sweatmate/models/postgres"
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/broadcast"
	"Sweatmate/services/identity"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore is the live-session surface the registry needs when lobby
// mutations touch the session record. Implemented by
// services/redis.RedisClient; tests use an in-memory fake.
type SessionStore interface {
	GetWorkoutSession(sessionId string) (*redis_models.WorkoutSession, error)
	SaveWorkoutSession(session *redis_models.WorkoutSession) error
	AddActiveSession(sessionId string) error
	RemoveActiveSession(sessionId string) error
	LockSession(sessionId string) func()
}

// Registry is the single source of truth for "which lobby is a user in".
// Every mutation runs inside one transaction with the lobby row locked FOR
// UPDATE, which serializes commands hitting the same lobby; commands on
// different lobbies run concurrently. Broadcast payloads are built from a
// re-read of committed state, never from in-transaction objects.
type Registry struct {
	db          *gorm.DB
	redisClient SessionStore
	publisher   broadcast.Publisher
	resolver    identity.Resolver
	cfg         workout_constants.TimerConfig
	now         func() time.Time
}

func NewRegistry(db *gorm.DB, redisClient SessionStore, publisher broadcast.Publisher,
	resolver identity.Resolver, cfg workout_constants.TimerConfig) *Registry {
	return &Registry{
		db:          db,
		redisClient: redisClient,
		publisher:   publisher,
		resolver:    resolver,
		cfg:         cfg,
		now:         time.Now,
	}
}

// event is a broadcast queued during a transaction and published only after
// commit.
type event struct {
	channel string
	name    string
	payload interface{}
}

func (r *Registry) publishAll(evs []event) {
	for _, ev := range evs {
		r.publisher.Publish(ev.channel, ev.name, ev.payload)
	}
}

// publishState re-reads authoritative lobby state after commit and fans out
// lobby_state_changed. Stale in-transaction associations are never trusted.
func (r *Registry) publishState(lobbyID string) {
	state, err := r.LobbyState(lobbyID)
	if err != nil {
		log.Printf("[LOBBY-ERROR] Could not rebuild state for broadcast, lobby %s: %v", lobbyID, err)
		return
	}
	r.publisher.Publish(lobbyID, broadcast.EventLobbyStateChanged, state)
}

// MemberState is the broadcast view of one member.
type MemberState struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
}

// LobbyState is the full lobby snapshot included in every
// lobby_state_changed broadcast and returned by read commands. MemberCount
// is derived from the canonical member rows at build time.
type LobbyState struct {
	SessionID   string          `json:"session_id"`
	GroupID     string          `json:"group_id"`
	InitiatorID string          `json:"initiator_id"`
	Status      string          `json:"status"`
	WorkoutData json.RawMessage `json:"workout_data"`
	MemberCount int             `json:"member_count"`
	Members     []MemberState   `json:"members"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// LobbyState builds the snapshot from committed rows.
func (r *Registry) LobbyState(lobbyID string) (*LobbyState, error) {
	var lobby models.WorkoutLobby
	if err := r.db.Where("id = ?", lobbyID).First(&lobby).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("error fetching lobby: %v", err)
	}

	members, err := r.activeMembers(r.db, lobbyID)
	if err != nil {
		return nil, err
	}

	state := &LobbyState{
		SessionID:   lobby.ID,
		GroupID:     lobby.GroupID,
		InitiatorID: lobby.InitiatorID,
		Status:      lobby.Status,
		WorkoutData: json.RawMessage(lobby.WorkoutData),
		MemberCount: len(members),
		Members:     make([]MemberState, len(members)),
		CreatedAt:   lobby.CreatedAt,
		ExpiresAt:   lobby.ExpiresAt,
	}
	for i, m := range members {
		state.Members[i] = MemberState{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Status:      m.Status,
			JoinedAt:    m.JoinedAt,
		}
	}
	return state, nil
}

// lockLobby fetches the lobby row FOR UPDATE inside tx.
func (r *Registry) lockLobby(tx *gorm.DB, lobbyID string) (*models.WorkoutLobby, error) {
	var lobby models.WorkoutLobby
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", lobbyID).First(&lobby).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("error locking lobby: %v", err)
	}
	return &lobby, nil
}

// activeMembers lists waiting|ready members, earliest joined first. The
// deterministic order is what makes leadership transfer deterministic.
func (r *Registry) activeMembers(tx *gorm.DB, lobbyID string) ([]models.LobbyMember, error) {
	var members []models.LobbyMember
	err := tx.Where("lobby_id = ? AND status IN ?", lobbyID, models.ActiveMemberStatuses).
		Order("joined_at ASC").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching members: %v", err)
	}
	return members, nil
}

// activeMembershipsOf returns every active membership row of a user whose
// lobby is still non-terminal.
func (r *Registry) activeMembershipsOf(tx *gorm.DB, userID string) ([]models.LobbyMember, error) {
	var memberships []models.LobbyMember
	err := tx.Joins("JOIN workout_lobbies ON workout_lobbies.id = lobby_members.lobby_id").
		Where("lobby_members.user_id = ? AND lobby_members.status IN ?", userID, models.ActiveMemberStatuses).
		Where("workout_lobbies.status NOT IN ?", []string{models.LobbyStatusCompleted, models.LobbyStatusCancelled}).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching memberships: %v", err)
	}
	return memberships, nil
}

// CreateLobby opens a new waiting lobby with the creator as initiator and
// sole member. If the creator is still active somewhere else, a reconcile
// pass cleans that up first; a user found active even after cleanup is an
// inconsistency bug, not a user error, and is logged accordingly.
func (r *Registry) CreateLobby(groupID, initiatorID string, workoutData json.RawMessage) (*LobbyState, error) {
	existing, err := r.activeMembershipsOf(r.db, initiatorID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		log.Printf("[LOBBY] User %s active in %d lobbies before create, reconciling", initiatorID, len(existing))
		if _, err := r.ReconcileMembership(initiatorID); err != nil {
			return nil, err
		}
	}

	displayName := r.resolver.DisplayName(initiatorID)
	now := r.now()

	var lobbyID string
	err = r.db.Transaction(func(tx *gorm.DB) error {
		// Re-check after cleanup, inside the transaction
		still, err := r.activeMembershipsOf(tx, initiatorID)
		if err != nil {
			return err
		}
		if len(still) > 0 {
			log.Printf("[LOBBY-CRITICAL] User %s still active in lobby %s after reconcile, refusing create",
				initiatorID, still[0].LobbyID)
			return ErrAlreadyInLobby
		}

		newLobby := models.WorkoutLobby{
			GroupID:     groupID,
			InitiatorID: initiatorID,
			WorkoutData: datatypes.JSON(workoutData),
			Status:      models.LobbyStatusWaiting,
			ExpiresAt:   now.Add(r.cfg.LobbyTTL),
		}
		if err := tx.Create(&newLobby).Error; err != nil {
			return fmt.Errorf("error creating lobby: %v", err)
		}
		lobbyID = newLobby.ID

		member := models.LobbyMember{
			LobbyID:     newLobby.ID,
			UserID:      initiatorID,
			DisplayName: displayName,
			Status:      models.MemberStatusWaiting,
			JoinedAt:    now,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("error adding creator to lobby: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LOBBY] User %s created lobby %s for group %s", initiatorID, lobbyID, groupID)
	return r.LobbyState(lobbyID)
}

// JoinLobby adds a user to a waiting lobby. A previous left/kicked row for
// the same (lobby, user) pair is reused instead of duplicated.
func (r *Registry) JoinLobby(lobbyID, userID string) (*LobbyState, error) {
	displayName := r.resolver.DisplayName(userID)
	now := r.now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		lobby, err := r.lockLobby(tx, lobbyID)
		if err != nil {
			return err
		}
		if !lobby.IsJoinable(now) {
			return ErrLobbyInactive
		}

		var prior models.LobbyMember
		found := true
		if err := tx.Where("lobby_id = ? AND user_id = ?", lobbyID, userID).First(&prior).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("error fetching membership: %v", err)
			}
			found = false
		}
		if found && prior.IsActive() {
			return ErrAlreadyMember
		}

		others, err := r.activeMembershipsOf(tx, userID)
		if err != nil {
			return err
		}
		if len(others) > 0 {
			return ErrAlreadyInLobby
		}

		if found {
			// Rejoin: reuse the row
			updates := map[string]interface{}{
				"status":       models.MemberStatusWaiting,
				"display_name": displayName,
				"joined_at":    now,
				"left_at":      nil,
				"left_reason":  "",
			}
			if err := tx.Model(&models.LobbyMember{}).
				Where("lobby_id = ? AND user_id = ?", lobbyID, userID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("error reactivating membership: %v", err)
			}
			return nil
		}

		member := models.LobbyMember{
			LobbyID:     lobbyID,
			UserID:      userID,
			DisplayName: displayName,
			Status:      models.MemberStatusWaiting,
			JoinedAt:    now,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("error adding user to lobby: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LOBBY] User %s joined lobby %s", userID, lobbyID)

	r.publisher.Publish(lobbyID, broadcast.EventMemberJoined, CommandAck{
		SessionID: lobbyID, UserID: userID, DisplayName: displayName,
	})
	r.publisher.Publish(lobbyID, broadcast.EventLobbyMessage, SystemMessage{
		SessionID: lobbyID,
		System:    true,
		Message:   fmt.Sprintf("%s joined the lobby", displayName),
		SentAt:    now,
	})
	r.publishState(lobbyID)

	return r.LobbyState(lobbyID)
}

// UpdateStatus flips a member between waiting and ready.
func (r *Registry) UpdateStatus(lobbyID, userID, newStatus string) (*LobbyState, error) {
	if newStatus != models.MemberStatusWaiting && newStatus != models.MemberStatusReady {
		return nil, ErrNotMember
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockLobby(tx, lobbyID); err != nil {
			return err
		}

		result := tx.Model(&models.LobbyMember{}).
			Where("lobby_id = ? AND user_id = ? AND status IN ?", lobbyID, userID, models.ActiveMemberStatuses).
			Update("status", newStatus)
		if result.Error != nil {
			return fmt.Errorf("error updating member status: %v", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotMember
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.publisher.Publish(lobbyID, broadcast.EventMemberStatusUpdated, StatusUpdate{
		SessionID: lobbyID, UserID: userID, Status: newStatus,
	})
	r.publishState(lobbyID)

	return r.LobbyState(lobbyID)
}

// TransferInitiator hands the leader role to another active member.
func (r *Registry) TransferInitiator(lobbyID, currentInitiatorID, newInitiatorID string) error {
	if currentInitiatorID == newInitiatorID {
		return ErrTransferToSelf
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		lobby, err := r.lockLobby(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.InitiatorID != currentInitiatorID {
			return ErrNotInitiator
		}

		var target models.LobbyMember
		err = tx.Where("lobby_id = ? AND user_id = ? AND status IN ?",
			lobbyID, newInitiatorID, models.ActiveMemberStatuses).First(&target).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotMember
			}
			return fmt.Errorf("error fetching target member: %v", err)
		}

		if err := tx.Model(&models.WorkoutLobby{}).Where("id = ?", lobbyID).
			Update("initiator_id", newInitiatorID).Error; err != nil {
			return fmt.Errorf("error transferring initiator role: %v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[LOBBY] Initiator role of lobby %s transferred %s -> %s", lobbyID, currentInitiatorID, newInitiatorID)

	r.publisher.Publish(lobbyID, broadcast.EventInitiatorTransfer, TransferNotice{
		SessionID: lobbyID, OldInitiatorID: currentInitiatorID, NewInitiatorID: newInitiatorID,
	})
	r.publishState(lobbyID)
	return nil
}

// Broadcast payload shapes. Deltas carry ids only; the paired
// lobby_state_changed snapshot carries the full picture.

type CommandAck struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
}

type StatusUpdate struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
}

type TransferNotice struct {
	SessionID      string `json:"session_id"`
	OldInitiatorID string `json:"old_initiator_id"`
	NewInitiatorID string `json:"new_initiator_id"`
}

type SystemMessage struct {
	SessionID string    `json:"session_id"`
	System    bool      `json:"system"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
}
