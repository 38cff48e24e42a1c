package routes

import (
	"Sweatmate/controllers"
	"Sweatmate/middleware"
	"Sweatmate/services/invitations"
	"Sweatmate/services/lobby"
	"Sweatmate/services/timer"
	utils "Sweatmate/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, registry *lobby.Registry,
	tracker *invitations.Tracker, engine *timer.Engine) {

	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.GET("/users/:user_id", controllers.GetUserPublicInfo(db))

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		// Lobby lifecycle
		authentication.POST("/lobby", controllers.CreateLobby(registry))

		authentication.GET("/lobbies", controllers.GetOpenLobbies(db))

		authentication.GET("/lobby/:lobby_id", controllers.GetLobbyInfo(registry))

		authentication.POST("/lobby/:lobby_id/join", controllers.JoinLobby(registry))

		authentication.POST("/lobby/:lobby_id/leave", controllers.LeaveLobby(registry))

		authentication.PATCH("/lobby/:lobby_id/status", controllers.UpdateMemberStatus(registry))

		authentication.POST("/lobby/:lobby_id/kick", controllers.KickMember(registry))

		authentication.POST("/lobby/:lobby_id/transfer", controllers.TransferInitiator(registry))

		authentication.POST("/lobby/:lobby_id/start", controllers.StartWorkout(registry))

		authentication.POST("/lobby/force-leave-all", controllers.ForceLeaveAll(registry))

		// Invitations
		authentication.POST("/lobby/:lobby_id/invite", controllers.InviteUser(tracker))

		authentication.POST("/invitations/:invitation_id/accept", controllers.AcceptInvitation(tracker))

		authentication.POST("/invitations/:invitation_id/decline", controllers.DeclineInvitation(tracker))

		authentication.GET("/invitations", controllers.GetMyInvitations(tracker))

		// Live workout sessions
		authentication.GET("/session/:session_id", controllers.GetSessionState(engine))

		authentication.POST("/session/:session_id/pause", controllers.PauseSession(engine))

		authentication.POST("/session/:session_id/resume", controllers.ResumeSession(engine))

		authentication.POST("/session/:session_id/stop", controllers.StopSession(engine))
	}
}
