package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := router.Group("/auth")
	auth.Use(AuthRequired)
	auth.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return router
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user42")
	assert.NoError(t, err)

	userID, err := parseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user42", userID)
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	router := protectedRouter()
	token, _ := GenerateToken("user42")

	req, _ := http.NewRequest("GET", "/auth/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user42")
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	router := protectedRouter()

	req, _ := http.NewRequest("GET", "/auth/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsGarbageToken(t *testing.T) {
	router := protectedRouter()

	req, _ := http.NewRequest("GET", "/auth/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSocketioDecoder(t *testing.T) {
	token, _ := GenerateToken("user42")

	userID, err := Socketio_JWT_decoder(map[string]interface{}{
		"authorization": "Bearer " + token,
	})
	assert.NoError(t, err)
	assert.Equal(t, "user42", userID)

	_, err = Socketio_JWT_decoder(map[string]interface{}{})
	assert.Error(t, err)
}
