package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a User account. The display
 * name is what other members of a lobby see; it is cached on LobbyMember
 * rows at join time.
 */
type User struct {
	ID           string    `gorm:"primaryKey;size:50;not null"`
	Email        string    `gorm:"size:100;not null;uniqueIndex"`
	DisplayName  string    `gorm:"size:100;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Memberships []LobbyMember       `gorm:"foreignKey:UserID"`
	Invitations []WorkoutInvitation `gorm:"foreignKey:InvitedUserID"`
}
