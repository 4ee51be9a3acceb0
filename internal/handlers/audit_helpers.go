package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"edu-chat-service/internal/models"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// currentUser reads the identity snapshot stamped by the auth
// middleware.
func currentUser(c *gin.Context) models.User {
	return models.User{
		ID:   c.GetString("userID"),
		Name: c.GetString("userName"),
		Role: c.GetString("userRole"),
	}
}
