package socketio_utils

import (
	"Sweatmate/middleware"
	models "Sweatmate/models/postgres"
	"Sweatmate/utils"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// Function that verifies a socket.io client connection using JWT authentication.
// It extracts the user id from the JWT token in the handshake auth data.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, userID string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		log.Println("No auth data provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, ""
	}

	userID, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		log.Println("Error decoding JWT:", err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid JWT. Remember to set it on the 'authorization' field and with the 'Bearer ' prefix.",
		})
		return false, ""
	}

	// The token may outlive the account
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		log.Println("Error fetching user from database:", err)
		client.Emit("error", gin.H{"error": "Authentication failed: could not find user"})
		return false, ""
	}

	return true, userID
}

// ValidateMembership checks that the user is an active member of the lobby
// before allowing room-scoped actions. Emits the error to the client itself.
func ValidateMembership(client *socket.Socket, db *gorm.DB, userID string, lobbyID string) error {
	isMember, err := utils.IsMemberOfLobby(db, lobbyID, userID)
	if err != nil {
		log.Printf("[SOCKET-ERROR] Database error validating membership: %v", err)
		client.Emit("error", gin.H{"error": "Database error"})
		return err
	}
	if !isMember {
		client.Emit("error", gin.H{"error": "You must join the lobby first"})
		return fmt.Errorf("user %s not in lobby %s", userID, lobbyID)
	}
	return nil
}
