package socket_io

import (
	"Sweatmate/services/broadcast"
	"Sweatmate/services/socket_io/handlers"

	socketio_types "Sweatmate/services/socket_io/types"
	socketio_utils "Sweatmate/services/socket_io/utils"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.UserConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, userID := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		(*socketio_types.SocketServer)(sio).AddConnection(userID, client)
		log.Printf("[SOCKET] User %s connected (socket %s)", userID, client.Id())

		// Personal room for user-scoped events (invitations, kicks)
		client.Join(socket.Room(broadcast.UserChannel(userID)))

		// Subscribe to a lobby's event stream
		client.On("join_lobby", handlers.HandleJoinLobby(client, db, userID))

		// Relay a chat message to the lobby
		client.On("broadcast_to_lobby", handlers.BroadcastMessageToLobby(client, db, userID, (*socketio_types.SocketServer)(sio)))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(userID, (*socketio_types.SocketServer)(sio)))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	log.Println("Socket server started")
}
