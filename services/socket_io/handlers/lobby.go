package handlers

import (
	"Sweatmate/services/broadcast"
	socketio_types "Sweatmate/services/socket_io/types"
	socketio_utils "Sweatmate/services/socket_io/utils"
	"Sweatmate/utils"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// Function to handle the act of subscribing to a lobby's event stream. The
// user must already be a member (membership is an HTTP command); this only
// joins the socket.io room so subsequent broadcasts reach the client.
func HandleJoinLobby(client *socket.Socket, db *gorm.DB, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			log.Printf("[JOIN-ERROR] Missing lobby id for user %s", userID)
			client.Emit("error", gin.H{"error": "Missing lobby id"})
			return
		}

		lobbyID, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Lobby id must be a string"})
			return
		}

		if _, err := utils.CheckLobbyExists(db, lobbyID); err != nil {
			client.Emit("error", gin.H{"error": "Lobby does not exist"})
			return
		}

		if err := socketio_utils.ValidateMembership(client, db, userID, lobbyID); err != nil {
			return
		}

		client.Join(socket.Room(lobbyID))
		log.Printf("[JOIN] User %s subscribed to lobby %s", userID, lobbyID)
		client.Emit("joined_lobby", gin.H{
			"lobby_id": lobbyID,
			"message":  "Welcome to the lobby!",
		})
	}
}

// Function to broadcast a chat message to all clients in a specific lobby.
// Messages are relayed, not stored.
func BroadcastMessageToLobby(client *socket.Socket, db *gorm.DB, userID string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing lobby id or message"})
			return
		}

		lobbyID, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Lobby id must be a string"})
			return
		}
		message, ok := args[1].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Message must be a string"})
			return
		}

		if err := socketio_utils.ValidateMembership(client, db, userID, lobbyID); err != nil {
			return
		}

		sio.Sio_server.To(socket.Room(lobbyID)).Emit(broadcast.EventLobbyMessage, gin.H{
			"lobby_id": lobbyID,
			"user_id":  userID,
			"message":  message,
		})
	}
}

// Function to handle socket.io client disconnections. Only the connection
// registry is touched: membership is not revoked on disconnect, users can
// reconnect mid-workout.
func HandleDisconnecting(userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] User %s disconnecting", userID)
		sio.RemoveConnection(userID)
	}
}
