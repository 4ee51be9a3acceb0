package models

import "time"

// Message represents a chat message.
//
// Exactly one of GroupID/RecipientID is set: GroupID addresses a named
// group, RecipientID addresses a direct conversation whose identity is
// derived from the sender/recipient pair.
type Message struct {
	ID          string     `json:"id"`
	GroupID     string     `json:"group_id,omitempty"`
	RecipientID string     `json:"recipient_id,omitempty"`
	SenderID    string     `json:"sender_id"`
	SenderName  string     `json:"sender_name"`
	SenderRole  string     `json:"sender_role"`
	Content     string     `json:"content"`
	Timestamp   time.Time  `json:"timestamp"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the message is a tombstone.
func (m Message) Deleted() bool {
	return m.DeletedAt != nil
}

// ChatEvent is broadcasted through websockets.
type ChatEvent struct {
	Type      string   `json:"type"`
	GroupID   string   `json:"group_id"`
	Message   *Message `json:"message,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	IsTyping  bool     `json:"is_typing,omitempty"`
}
