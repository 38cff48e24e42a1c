package postgres

import (
	"math/rand"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lobby status values. A lobby is "terminal" once it is completed or
// cancelled; terminal lobbies never accept new members.
const (
	LobbyStatusWaiting    = "waiting"
	LobbyStatusStarting   = "starting"
	LobbyStatusInProgress = "in_progress"
	LobbyStatusCompleted  = "completed"
	LobbyStatusCancelled  = "cancelled"
)

/*
 * 'WorkoutLobby' defines the structure of a Sweatmate workout lobby (the
 * pre-workout waiting room). The workout payload is an opaque jsonb blob;
 * the server only ever looks at the length of its "exercises" array.
 */
type WorkoutLobby struct {
	ID          string         `gorm:"primaryKey;size:50;not null"`
	GroupID     string         `gorm:"size:50;not null;index:idx_workout_lobbies_group"`
	InitiatorID string         `gorm:"size:50;not null;index:idx_workout_lobbies_initiator"`
	WorkoutData datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	Status      string         `gorm:"size:20;default:'waiting';index:idx_workout_lobbies_status"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	ExpiresAt   time.Time      `gorm:"not null"`

	// Relationships
	Initiator User           `gorm:"foreignKey:InitiatorID"`
	Members   []*LobbyMember `gorm:"foreignKey:LobbyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// IsTerminal reports whether the lobby can no longer be joined or mutated.
func (l *WorkoutLobby) IsTerminal() bool {
	return l.Status == LobbyStatusCompleted || l.Status == LobbyStatusCancelled
}

// IsJoinable reports whether new members may still enter. A waiting lobby
// past its expiry deadline is logically dead even before the cleanup job
// flips its status.
func (l *WorkoutLobby) IsJoinable(now time.Time) bool {
	return l.Status == LobbyStatusWaiting && now.Before(l.ExpiresAt)
}

// Random lobby id generation
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateLobbyID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// BeforeCreate assigns a short unique lobby id. The id space is small on
// purpose (ids are typed by users into invite links), so collisions are
// re-rolled.
func (l *WorkoutLobby) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID != "" {
		return nil
	}
	for {
		newID := generateLobbyID(6)
		var existing WorkoutLobby
		if err := tx.Where("id = ?", newID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				l.ID = newID
				return nil
			}
			return err
		}
		// Collision, roll again
	}
}
