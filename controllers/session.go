package controllers

import (
	"Sweatmate/middleware"
	"Sweatmate/services/timer"

	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Gives the current session state
// @Description Returns the live snapshot of a workout session
// @Tags session
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param session_id path string true "session_id"
// @Success 200 {object} redis.SessionSnapshot
// @Failure 404 {object} object{error=string}
// @Router /auth/session/{session_id} [get]
// @Security ApiKeyAuth
func GetSessionState(engine *timer.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.JWT_decoder(c); err != nil {
			return
		}

		snap, err := engine.State(c.Param("session_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// @Summary Pauses the session
// @Description Freezes the countdown; initiator only
// @Tags session
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param session_id path string true "session_id"
// @Success 200 {object} redis.SessionSnapshot
// @Failure 409 {object} object{error=string}
// @Router /auth/session/{session_id}/pause [post]
// @Security ApiKeyAuth
func PauseSession(engine *timer.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		snap, err := engine.Pause(c.Param("session_id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// @Summary Resumes the session
// @Description Unfreezes a paused countdown; initiator only
// @Tags session
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param session_id path string true "session_id"
// @Success 200 {object} redis.SessionSnapshot
// @Failure 409 {object} object{error=string}
// @Router /auth/session/{session_id}/resume [post]
// @Security ApiKeyAuth
func ResumeSession(engine *timer.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		snap, err := engine.Resume(c.Param("session_id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// @Summary Stops the session
// @Description Terminally halts the workout before natural completion; initiator only
// @Tags session
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param session_id path string true "session_id"
// @Success 200 {object} redis.SessionSnapshot
// @Failure 409 {object} object{error=string}
// @Router /auth/session/{session_id}/stop [post]
// @Security ApiKeyAuth
func StopSession(engine *timer.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		snap, err := engine.Stop(c.Param("session_id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
