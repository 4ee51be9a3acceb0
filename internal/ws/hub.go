package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"edu-chat-service/internal/models"
	"edu-chat-service/internal/observability"
)

// Hub maintains active websocket rooms, one per conversation. Named
// groups and derived 1:1 conversations share the same room space since
// both are addressed by canonical group id.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to a conversation room.
func (h *Hub) AddClient(groupID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[groupID]; !ok {
		h.rooms[groupID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[groupID][conn] = true
	if _, ok := h.connInfo[groupID]; !ok {
		h.connInfo[groupID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[groupID][conn] = info
}

// RemoveClient removes a websocket connection from a room.
func (h *Hub) RemoveClient(groupID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[groupID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, groupID)
		}
	}
	if infos, ok := h.connInfo[groupID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, groupID)
		}
	}
}

// BroadcastMessage sends a new message to all clients in a room.
func (h *Hub) BroadcastMessage(groupID string, msg models.Message) {
	h.broadcast(groupID, models.ChatEvent{Type: "message", GroupID: groupID, Message: &msg})
}

// BroadcastEdit notifies clients that a message body changed.
func (h *Hub) BroadcastEdit(groupID string, msg models.Message) {
	h.broadcast(groupID, models.ChatEvent{Type: "message_edited", GroupID: groupID, Message: &msg})
}

// BroadcastDeletion notifies clients of a tombstoned message.
func (h *Hub) BroadcastDeletion(groupID, messageID string) {
	h.broadcast(groupID, models.ChatEvent{Type: "message_deleted", GroupID: groupID, MessageID: messageID})
}

// BroadcastTyping relays a typing signal change to the room.
func (h *Hub) BroadcastTyping(groupID, userID string, isTyping bool) {
	h.broadcast(groupID, models.ChatEvent{Type: "typing", GroupID: groupID, UserID: userID, IsTyping: isTyping})
}

func (h *Hub) broadcast(groupID string, event models.ChatEvent) {
	h.mu.RLock()
	conns := h.rooms[groupID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(groupID, conn)
			h.publishWSError(groupID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(groupID string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(groupID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"group_id":    groupID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.groups", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(groupID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[groupID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
