package controllers

import (
	"Sweatmate/middleware"
	"Sweatmate/services/invitations"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Invites a user to the lobby
// @Description Sends a time-boxed invitation; initiator only
// @Tags invitations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param lobby_id path string true "lobby_id"
// @Param request body controllers.targetRequest true "Invited user"
// @Success 200 {object} invitations.InvitationView
// @Failure 409 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/invite [post]
// @Security ApiKeyAuth
func InviteUser(tracker *invitations.Tracker) gin.HandlerFunc {
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

		view, err := tracker.Invite(c.Param("lobby_id"), userID, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// @Summary Accepts an invitation
// @Description Joins the caller to the inviting lobby and returns the session id
// @Tags invitations
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param invitation_id path string true "invitation_id"
// @Success 200 {object} object{session_id=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/invitations/{invitation_id}/accept [post]
// @Security ApiKeyAuth
func AcceptInvitation(tracker *invitations.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		sessionID, err := tracker.Accept(c.Param("invitation_id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
	}
}

type declineRequest struct {
	Reason string `json:"reason"`
}

// @Summary Declines an invitation
// @Description Refuses a pending invitation with an optional reason
// @Tags invitations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param invitation_id path string true "invitation_id"
// @Param request body controllers.declineRequest false "Decline reason"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/invitations/{invitation_id}/decline [post]
// @Security ApiKeyAuth
func DeclineInvitation(tracker *invitations.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var req declineRequest
		_ = c.ShouldBindJSON(&req)

		if err := tracker.Decline(c.Param("invitation_id"), userID, req.Reason); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
	}
}

// @Summary Lists the caller's pending invitations
// @Description Returns every live invitation addressed to the caller
// @Tags invitations
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} invitations.InvitationView
// @Failure 500 {object} object{error=string}
// @Router /auth/invitations [get]
// @Security ApiKeyAuth
func GetMyInvitations(tracker *invitations.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		views, err := tracker.ListPending(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}
