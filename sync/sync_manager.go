package sync

import (
	"Sweatmate/models/postgres"
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/redis"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SyncManager keeps the Redis session store and the PostgreSQL lobby table
// consistent with each other. It runs once at startup: after a crash the two
// stores can disagree (a session left in Redis for a lobby that is already
// terminal, or a lobby stuck on in_progress with no session behind it).
type SyncManager struct {
	redisClient *redis.RedisClient
	db          *gorm.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis.RedisClient, db *gorm.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
	}
}

// SyncSessionState reconciles a single session against its lobby row.
// Session IDs match workout_lobbies.id, so the lookup is direct.
func (sm *SyncManager) SyncSessionState(sessionID string) error {
	session, err := sm.redisClient.GetWorkoutSession(sessionID)
	if err != nil {
		// Unreadable record: drop it from the active set so the tick
		// loop stops retrying it.
		log.Printf("[SYNC] Dropping unreadable session %s: %v", sessionID, err)
		sm.redisClient.RemoveActiveSession(sessionID)
		return sm.redisClient.DeleteWorkoutSession(sessionID)
	}

	var lob postgres.WorkoutLobby
	err = sm.db.First(&lob, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[SYNC] Session %s has no lobby row, cleaning up", sessionID)
		sm.redisClient.RemoveActiveSession(sessionID)
		return sm.redisClient.DeleteWorkoutSession(sessionID)
	}
	if err != nil {
		return fmt.Errorf("error reading lobby %s: %w", sessionID, err)
	}

	if session.IsTerminal() {
		// Session already finished; make sure the lobby row agrees.
		if !lob.IsTerminal() {
			log.Printf("[SYNC] Lobby %s still %s behind a finished session, closing it", lob.ID, lob.Status)
			if err := sm.db.Model(&postgres.WorkoutLobby{}).Where("id = ?", lob.ID).
				Update("status", postgres.LobbyStatusCompleted).Error; err != nil {
				return fmt.Errorf("error closing lobby %s: %w", lob.ID, err)
			}
		}
		return sm.redisClient.RemoveActiveSession(sessionID)
	}

	if lob.IsTerminal() {
		// Lobby was closed while the session record survived a restart.
		log.Printf("[SYNC] Stopping orphaned session %s (lobby is %s)", sessionID, lob.Status)
		session.Status = redis_models.SessionStopped
		if err := sm.redisClient.SaveWorkoutSession(session); err != nil {
			return fmt.Errorf("error stopping session %s: %w", sessionID, err)
		}
		return sm.redisClient.RemoveActiveSession(sessionID)
	}

	return nil
}

// SyncAllSessions walks the active session set and reconciles every entry.
// Errors are logged per session so one bad record cannot block startup.
func (sm *SyncManager) SyncAllSessions() error {
	ids, err := sm.redisClient.ActiveSessionIDs()
	if err != nil {
		return fmt.Errorf("error listing active sessions: %w", err)
	}

	for _, id := range ids {
		if err := sm.SyncSessionState(id); err != nil {
			log.Printf("[SYNC-ERROR] Session %s: %v", id, err)
		}
	}

	log.Printf("[SYNC] Reconciled %d active session(s)", len(ids))
	return nil
}
