package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-chat-service/internal/chat"
)

// respondEngineError maps the engine's error taxonomy onto HTTP
// statuses. All engine failures are synchronous logic errors; nothing
// here is retryable.
func respondEngineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chat.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrMessageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, chat.ErrMessageDeleted):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
