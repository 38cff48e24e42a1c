package postgres

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/google/uuid"
)

// Invitation status values.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusDeclined  = "declined"
	InvitationStatusCancelled = "cancelled"
	InvitationStatusExpired   = "expired"
)

/*
 * 'WorkoutInvitation' represents a time-boxed offer for a specific user to
 * join a specific lobby. The workout payload is snapshotted at send time so
 * the invited client can preview the workout even if the lobby later edits it.
 */
type WorkoutInvitation struct {
	ID            string         `gorm:"primaryKey;size:50;not null"`
	LobbyID       string         `gorm:"size:50;not null;index:idx_workout_invitations_lobby"`
	GroupID       string         `gorm:"size:50;not null"`
	InitiatorID   string         `gorm:"size:50;not null"`
	InvitedUserID string         `gorm:"size:50;not null;index:idx_workout_invitations_invited"`
	WorkoutData   datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	Status        string         `gorm:"size:20;default:'pending';index"`
	SentAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	ExpiresAt     time.Time      `gorm:"not null"`
	RespondedAt   *time.Time     `gorm:""`
	ResponseNote  string         `gorm:"size:200"`

	// Relationships
	Lobby       WorkoutLobby `gorm:"foreignKey:LobbyID;constraint:OnDelete:CASCADE"`
	Initiator   User         `gorm:"foreignKey:InitiatorID"`
	InvitedUser User         `gorm:"foreignKey:InvitedUserID"`
}

// IsPending computes pending-ness against the wall clock. Expiry is passive:
// a stale "pending" row past its deadline is not pending, whether or not the
// background bookkeeping job has flipped its status yet.
func (i *WorkoutInvitation) IsPending(now time.Time) bool {
	return i.Status == InvitationStatusPending && now.Before(i.ExpiresAt)
}

// BeforeCreate assigns a uuid id.
func (i *WorkoutInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
