package models

// GroupType discriminates the two conversation kinds.
type GroupType string

const (
	// GroupNamed is an explicitly created multi-party group (a class,
	// a section) with a stored roster.
	GroupNamed GroupType = "named"
	// GroupIndividual is a 1:1 conversation whose id is derived from
	// the sorted participant pair; it exists the moment a message does.
	GroupIndividual GroupType = "individual"
)

// ChatGroup is a conversation identity.
type ChatGroup struct {
	ID           string    `json:"id"`
	Type         GroupType `json:"type"`
	Name         string    `json:"name,omitempty"`
	Participants []string  `json:"participants"`
}

// GroupView is the API-friendly view of a group for one user, annotated
// with fields derived from the ledger and read markers.
type GroupView struct {
	ChatGroup
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}
