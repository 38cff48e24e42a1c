package postgres

import (
	"time"
)

// Member status values. A member is "active" while waiting or ready; left
// and kicked rows are kept for bookkeeping and reused on rejoin.
const (
	MemberStatusWaiting = "waiting"
	MemberStatusReady   = "ready"
	MemberStatusLeft    = "left"
	MemberStatusKicked  = "kicked"
)

// ActiveMemberStatuses is the status set that counts as membership for the
// one-lobby-per-user exclusivity rule.
var ActiveMemberStatuses = []string{MemberStatusWaiting, MemberStatusReady}

/*
 * 'LobbyMember' represents a user's membership of a single lobby.
 * At most one row per (lobby, user) exists; rejoining updates the row
 * instead of inserting a duplicate (composite primary key).
 */
type LobbyMember struct {
	// NOTE: composite primary key definition
	LobbyID     string     `gorm:"primaryKey;size:50;not null"`
	UserID      string     `gorm:"primaryKey;size:50;not null;index"`
	DisplayName string     `gorm:"size:100;not null"`
	Status      string     `gorm:"size:20;default:'waiting';index"`
	JoinedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP"`
	LeftAt      *time.Time `gorm:""`
	LeftReason  string     `gorm:"size:100"`

	// Relationships
	Lobby WorkoutLobby `gorm:"foreignKey:LobbyID"`
	User  User         `gorm:"foreignKey:UserID"`
}

// IsActive reports whether this row counts as current membership.
func (m *LobbyMember) IsActive() bool {
	return m.Status == MemberStatusWaiting || m.Status == MemberStatusReady
}
