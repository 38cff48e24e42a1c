package broadcast

import (
	"fmt"
	"log"

	"Sweatmate/services/redis"
	socketio_types "Sweatmate/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Event names broadcast by the lobby registry, invitation tracker and timer
// engine. Lobby-scoped events go to the room keyed by the lobby/session id,
// user-scoped events to the user's personal room.
const (
	EventMemberJoined        = "member_joined"
	EventMemberLeft          = "member_left"
	EventMemberKicked        = "member_kicked"
	EventMemberStatusUpdated = "member_status_updated"
	EventInitiatorTransfer   = "initiator_role_transferred"
	EventLobbyStateChanged   = "lobby_state_changed"
	EventLobbyDeleted        = "lobby_deleted"
	EventWorkoutStarted      = "workout_started"
	EventWorkoutInvitation   = "user_workout_invitation"
	EventSessionState        = "session_state"
	EventLobbyMessage        = "new_lobby_message"
)

// UserChannel is the personal room every authenticated socket joins at
// connection time.
func UserChannel(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// Publisher is the one-way, fire-and-forget event sink the core writes state
// deltas to. Delivery is best-effort: failures are logged by implementations
// and never surface to callers, since the next tick or state change re-sends
// full state.
type Publisher interface {
	Publish(channelKey string, event string, payload interface{})
}

// SocketBroadcaster fans events out over socket.io rooms. Every publish is
// stamped with a per-channel monotonic sequence (Redis INCR) so clients can
// drop reordered deliveries.
type SocketBroadcaster struct {
	sio         *socketio_types.SocketServer
	redisClient *redis.RedisClient
}

func NewSocketBroadcaster(sio *socketio_types.SocketServer, redisClient *redis.RedisClient) *SocketBroadcaster {
	return &SocketBroadcaster{sio: sio, redisClient: redisClient}
}

func (b *SocketBroadcaster) Publish(channelKey string, event string, payload interface{}) {
	seq, err := b.redisClient.NextSequence(channelKey)
	if err != nil {
		// Still deliver: a missing sequence is better than a missing event
		log.Printf("[BROADCAST-ERROR] Error getting sequence for channel %s: %v", channelKey, err)
	}

	if err := b.sio.Sio_server.To(socket.Room(channelKey)).Emit(event, gin.H{
		"seq":  seq,
		"data": payload,
	}); err != nil {
		log.Printf("[BROADCAST-ERROR] Error emitting %s to channel %s: %v", event, channelKey, err)
	}
}
