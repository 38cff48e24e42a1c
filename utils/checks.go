package utils

import (
	models "Sweatmate/models/postgres"
	"fmt"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
)

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// CheckLobbyExists fetches a lobby row or fails.
func CheckLobbyExists(db *gorm.DB, lobbyID string) (*models.WorkoutLobby, error) {
	var lobby models.WorkoutLobby
	result := db.Where("id = ?", lobbyID).First(&lobby)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("lobby not found")
		}
		return nil, result.Error
	}

	return &lobby, nil
}

// IsMemberOfLobby reports whether a user holds an active membership row in
// the given lobby.
func IsMemberOfLobby(db *gorm.DB, lobbyID string, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.LobbyMember{}).
		Where("lobby_id = ? AND user_id = ? AND status IN ?", lobbyID, userID, models.ActiveMemberStatuses).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
