package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-chat-service/internal/auth"
	"edu-chat-service/internal/models"
)

var testSecret = []byte("test-secret")

func newAuthRouter() (*gin.Engine, *models.User) {
	gin.SetMode(gin.TestMode)
	seen := &models.User{}
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		seen.ID = c.GetString("userID")
		seen.Name = c.GetString("userName")
		seen.Role = c.GetString("userRole")
		c.Status(http.StatusOK)
	})
	return r, seen
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router, seen := newAuthRouter()

	token, err := auth.GenerateToken(models.User{ID: "s1", Name: "Sara", Role: "student"}, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", seen.ID)
	assert.Equal(t, "Sara", seen.Name)
	assert.Equal(t, "student", seen.Role)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router, _ := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router, _ := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	router, _ := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
