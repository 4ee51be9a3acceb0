package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-chat-service/internal/chat"
	"edu-chat-service/internal/observability"
	"edu-chat-service/internal/telemetry"
	"edu-chat-service/internal/ws"
)

// GroupHandler manages conversation-level endpoints.
type GroupHandler struct {
	engine *chat.Engine
	hub    *ws.Hub
	audit  *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(engine *chat.Engine, hub *ws.Hub, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{engine: engine, hub: hub, audit: audit}
}

// CreateGroup handles POST /groups. The caller becomes a participant.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	user := currentUser(c)

	var req struct {
		Name      string   `json:"name" binding:"required"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.engine.CreateGroup(c.Request.Context(), req.Name, user.ID, req.MemberIDs)
	if err != nil {
		observability.IncEngineOp("create_group", "error")
		respondEngineError(c, err)
		return
	}
	observability.IncEngineOp("create_group", "ok")

	h.audit.Emit(c.Request.Context(), "INFO", "Group created", requestIDFromContext(c), user.ID)
	c.JSON(http.StatusCreated, gin.H{"group_id": group.ID})
}

// ListGroups returns the caller's conversations, most recently active
// first, each annotated with last message and unread count.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	user := currentUser(c)
	groups := h.engine.GroupsForUser(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroupMessages returns the conversation history, tombstones
// included as deletion markers.
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	groupID, ok := h.requireMembership(c)
	if !ok {
		return
	}

	msgs := h.engine.MessagesForGroup(c.Request.Context(), groupID)
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead advances the caller's read marker past the conversation's
// current messages.
func (h *GroupHandler) MarkRead(c *gin.Context) {
	groupID, ok := h.requireMembership(c)
	if !ok {
		return
	}

	user := currentUser(c)
	h.engine.MarkRead(c.Request.Context(), groupID, user.ID)
	observability.IncEngineOp("mark_read", "ok")
	c.Status(http.StatusNoContent)
}

// UnreadCount returns how many messages the caller has not read yet.
func (h *GroupHandler) UnreadCount(c *gin.Context) {
	groupID, ok := h.requireMembership(c)
	if !ok {
		return
	}

	user := currentUser(c)
	count := h.engine.UnreadCount(c.Request.Context(), groupID, user.ID)
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// SetTyping flips the caller's typing signal and relays it to the room.
func (h *GroupHandler) SetTyping(c *gin.Context) {
	groupID, ok := h.requireMembership(c)
	if !ok {
		return
	}

	var req struct {
		IsTyping bool `json:"is_typing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	h.engine.SetTyping(c.Request.Context(), groupID, user.ID, req.IsTyping)
	h.hub.BroadcastTyping(groupID, user.ID, req.IsTyping)
	c.Status(http.StatusNoContent)
}

// TypingUsers lists who is typing in the conversation, the caller
// excluded.
func (h *GroupHandler) TypingUsers(c *gin.Context) {
	groupID, ok := h.requireMembership(c)
	if !ok {
		return
	}

	user := currentUser(c)
	users := h.engine.TypingUsers(c.Request.Context(), groupID, user.ID)
	c.JSON(http.StatusOK, gin.H{"typing": users})
}

// requireMembership gates conversation routes on participation. The
// engine itself treats unknown groups as empty state; turning away
// non-members is the HTTP layer's policy.
func (h *GroupHandler) requireMembership(c *gin.Context) (string, bool) {
	groupID := c.Param("group_id")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return "", false
	}

	user := currentUser(c)
	if !h.engine.IsParticipant(c.Request.Context(), groupID, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return "", false
	}
	return groupID, true
}
