package lobby

import (
	models "Sweatmate/models/postgres"
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/broadcast"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// StartResult is returned by StartWorkout and broadcast as workout_started.
type StartResult struct {
	SessionID string                       `json:"session_id"`
	Session   redis_models.SessionSnapshot `json:"session"`
}

// StartWorkout flips a fully-ready lobby into a running workout session.
// The lobby row commits as "starting" first; only once the live session
// exists in Redis does it become "in_progress" and visible to the tick loop.
// Solo workouts go through a different flow entirely, hence the member
// minimum.
func (r *Registry) StartWorkout(lobbyID, initiatorID string) (*StartResult, error) {
	var frozen json.RawMessage

	err := r.db.Transaction(func(tx *gorm.DB) error {
		lobby, err := r.lockLobby(tx, lobbyID)
		if err != nil {
			return err
		}
		if !lobby.IsJoinable(r.now()) {
			return ErrLobbyInactive
		}
		if lobby.InitiatorID != initiatorID {
			return ErrNotInitiator
		}

		members, err := r.activeMembers(tx, lobbyID)
		if err != nil {
			return err
		}
		if len(members) < r.cfg.MinMembersToStart {
			return ErrInsufficientMembers
		}
		for _, m := range members {
			if m.Status != models.MemberStatusReady {
				return ErrNotAllReady
			}
		}

		// Validate the payload at the boundary: the state machine needs an
		// exercise count before the first transition is due
		trial := redis_models.WorkoutSession{WorkoutData: json.RawMessage(lobby.WorkoutData)}
		if _, err := trial.ExerciseCount(); err != nil {
			return ErrInvalidWorkout
		}
		frozen = json.RawMessage(lobby.WorkoutData)

		if err := tx.Model(&models.WorkoutLobby{}).Where("id = ?", lobbyID).
			Update("status", models.LobbyStatusStarting).Error; err != nil {
			return fmt.Errorf("error marking lobby starting: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session := &redis_models.WorkoutSession{
		ID:            lobbyID,
		InitiatorID:   initiatorID,
		Status:        redis_models.SessionRunning,
		Phase:         redis_models.PhasePrepare,
		TimeRemaining: r.cfg.PrepareSeconds,
		CurrentRound:  1,
		StartedAt:     r.now(),
		WorkoutData:   frozen,
	}
	if err := r.redisClient.SaveWorkoutSession(session); err != nil {
		r.revertStart(lobbyID)
		return nil, fmt.Errorf("error creating workout session: %v", err)
	}
	if err := r.redisClient.AddActiveSession(lobbyID); err != nil {
		r.revertStart(lobbyID)
		return nil, fmt.Errorf("error activating workout session: %v", err)
	}

	if err := r.db.Model(&models.WorkoutLobby{}).Where("id = ?", lobbyID).
		Update("status", models.LobbyStatusInProgress).Error; err != nil {
		return nil, fmt.Errorf("error marking lobby in progress: %v", err)
	}

	log.Printf("[LOBBY] Workout started in lobby %s by %s", lobbyID, initiatorID)

	result := &StartResult{SessionID: lobbyID, Session: session.Snapshot()}
	r.publisher.Publish(lobbyID, broadcast.EventWorkoutStarted, result)
	r.publishState(lobbyID)
	return result, nil
}

// revertStart rolls a lobby stuck in "starting" back to waiting after the
// Redis half of the start failed.
func (r *Registry) revertStart(lobbyID string) {
	if err := r.db.Model(&models.WorkoutLobby{}).Where("id = ?", lobbyID).
		Update("status", models.LobbyStatusWaiting).Error; err != nil {
		log.Printf("[LOBBY-CRITICAL] Could not revert lobby %s from starting: %v", lobbyID, err)
	}
}

// CompleteLobby marks the lobby row of a finished session. Called by the
// timer engine when the phase machine reaches its terminal state.
func (r *Registry) CompleteLobby(lobbyID string) error {
	return r.db.Model(&models.WorkoutLobby{}).Where("id = ?", lobbyID).
		Update("status", models.LobbyStatusCompleted).Error
}
