package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-chat-service/internal/chat"
	"edu-chat-service/internal/observability"
	"edu-chat-service/internal/telemetry"
	"edu-chat-service/internal/ws"
)

// ChatHandler manages message endpoints.
type ChatHandler struct {
	engine *chat.Engine
	hub    *ws.Hub
	audit  *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(engine *chat.Engine, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{engine: engine, hub: hub, audit: audit}
}

// SendMessage stores a message and broadcasts it to its conversation.
// Exactly one of group_id and recipient_id must be set in the body.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content     string `json:"content"`
		GroupID     string `json:"group_id"`
		RecipientID string `json:"recipient_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	if req.GroupID != "" && !h.engine.IsParticipant(c.Request.Context(), req.GroupID, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	msg, err := h.engine.SendMessage(c.Request.Context(), chat.SendMessageInput{
		Sender:      user,
		Content:     req.Content,
		GroupID:     req.GroupID,
		RecipientID: req.RecipientID,
	})
	if err != nil {
		observability.IncEngineOp("send_message", "error")
		respondEngineError(c, err)
		return
	}
	observability.IncEngineOp("send_message", "ok")

	h.hub.BroadcastMessage(chat.CanonicalGroupID(msg), msg)
	c.JSON(http.StatusCreated, msg)
}

// EditMessage replaces the content of the caller's own message.
func (h *ChatHandler) EditMessage(c *gin.Context) {
	messageID := c.Param("message_id")

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	msg, err := h.engine.EditMessage(c.Request.Context(), messageID, req.Content, user.ID)
	if err != nil {
		observability.IncEngineOp("edit_message", "error")
		respondEngineError(c, err)
		return
	}
	observability.IncEngineOp("edit_message", "ok")

	h.hub.BroadcastEdit(chat.CanonicalGroupID(msg), msg)
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage tombstones the caller's own message. Deleting an
// already-deleted message succeeds again without changing anything.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID := c.Param("message_id")
	user := currentUser(c)

	msg, err := h.engine.Message(c.Request.Context(), messageID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if err := h.engine.DeleteMessage(c.Request.Context(), messageID, user.ID); err != nil {
		observability.IncEngineOp("delete_message", "error")
		respondEngineError(c, err)
		return
	}
	observability.IncEngineOp("delete_message", "ok")

	h.audit.Emit(c.Request.Context(), "INFO", "Message deleted", requestIDFromContext(c), user.ID)
	h.hub.BroadcastDeletion(chat.CanonicalGroupID(msg), messageID)
	c.Status(http.StatusNoContent)
}
