package controllers

import (
	"Sweatmate/middleware"
	models "Sweatmate/models/postgres"
	"Sweatmate/services/lobby"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"gorm.io/gorm"
)

// respondError maps a command error to its HTTP status.
func respondError(c *gin.Context, err error) {
	if e, ok := err.(*lobby.Error); ok {
		c.JSON(lobby.HTTPStatus(err), gin.H{"error": e.Msg, "code": e.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

type createLobbyRequest struct {
	GroupID     string          `json:"group_id" binding:"required"`
	WorkoutData json.RawMessage `json:"workout_data" binding:"required"`
}

// @Summary Creates a new lobby
// @Description Opens a waiting lobby for a group workout, with the caller as initiator
// @Tags lobby
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body controllers.createLobbyRequest true "Group and workout payload"
// @Success 200 {object} lobby.LobbyState
// @Failure 409 {object} object{error=string}
// @Router /auth/lobby [post]
// @Security ApiKeyAuth
func CreateLobby(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var req createLobbyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "group_id and workout_data are required"})
			return
		}

		state, err := registry.CreateLobby(req.GroupID, userID, req.WorkoutData)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// @Summary Gives info of a lobby
// @Description Given a lobby id, it will return its current state snapshot
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "Id of the lobby wanted"
// @Success 200 {object} lobby.LobbyState
// @Failure 404 {object} object{error=string}
// @Router /auth/lobby/{lobby_id} [get]
// @Security ApiKeyAuth
func GetLobbyInfo(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.JWT_decoder(c); err != nil {
			return
		}

		state, err := registry.LobbyState(c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// @Summary Lists open lobbies of a group
// @Description Returns every waiting lobby of the given group
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param group_id query string true "Group id"
// @Success 200 {array} object{lobby_id=string,initiator_id=string,created_at=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/lobbies [get]
// @Security ApiKeyAuth
func GetOpenLobbies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.JWT_decoder(c); err != nil {
			return
		}

		var rows []models.WorkoutLobby
		if err := db.Where("group_id = ? AND status = ?", c.Query("group_id"), models.LobbyStatusWaiting).
			Order("created_at DESC").Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching lobbies"})
			return
		}

		lobbies := make([]gin.H, len(rows))
		for i, row := range rows {
			lobbies[i] = gin.H{
				"lobby_id":     row.ID,
				"initiator_id": row.InitiatorID,
				"created_at":   row.CreatedAt,
				"expires_at":   row.ExpiresAt,
			}
		}
		c.JSON(http.StatusOK, lobbies)
	}
}

// @Summary Inserts a user into a lobby
// @Description Adds the caller as an active member of the lobby
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Success 200 {object} lobby.LobbyState
// @Failure 409 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/join [post]
// @Security ApiKeyAuth
func JoinLobby(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		state, err := registry.JoinLobby(c.Param("lobby_id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// @Summary Removes the caller from the lobby
// @Description Marks the caller's membership left, transferring leadership or closing the lobby if needed
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/leave [post]
// @Security ApiKeyAuth
func LeaveLobby(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		if err := registry.LeaveLobby(c.Param("lobby_id"), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Exited lobby successfully"})
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Updates the caller's readiness
// @Description Sets the caller's member status to waiting or ready
// @Tags lobby
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Param request body controllers.statusRequest true "New status"
// @Success 200 {object} lobby.LobbyState
// @Failure 400 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/status [patch]
// @Security ApiKeyAuth
func UpdateMemberStatus(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		state, err := registry.UpdateStatus(c.Param("lobby_id"), userID, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

type targetRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// @Summary Kicks a member from the lobby
// @Description Removes the target member; initiator only
// @Tags lobby
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Param request body controllers.targetRequest true "Target user"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/kick [post]
// @Security ApiKeyAuth
func KickMember(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var req targetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		if err := registry.KickMember(c.Param("lobby_id"), userID, req.UserID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Member kicked"})
	}
}

// @Summary Transfers the initiator role
// @Description Hands lobby leadership to another active member; initiator only
// @Tags lobby
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Param request body controllers.targetRequest true "New initiator"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/transfer [post]
// @Security ApiKeyAuth
func TransferInitiator(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var req targetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		if err := registry.TransferInitiator(c.Param("lobby_id"), userID, req.UserID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Initiator role transferred"})
	}
}

// @Summary Starts the workout
// @Description Creates the ticking workout session; initiator only, all members must be ready
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Success 200 {object} lobby.StartResult
// @Failure 400 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/start [post]
// @Security ApiKeyAuth
func StartWorkout(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		result, err := registry.StartWorkout(c.Param("lobby_id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Force-leaves the caller from every lobby
// @Description Recovery command: reconciles the caller out of all lobbies where they are still active
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{lobbies_cleaned=integer}
// @Failure 500 {object} object{error=string}
// @Router /auth/lobby/force-leave-all [post]
// @Security ApiKeyAuth
func ForceLeaveAll(registry *lobby.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		count, err := registry.ForceLeaveAll(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"lobbies_cleaned": count})
	}
}
