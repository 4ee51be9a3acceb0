package chat

import (
	"strings"

	"edu-chat-service/internal/models"
)

// individualSeparator joins the sorted participant pair into a direct
// conversation id. User ids carrying this character are rejected by
// SendMessage and CreateGroup so derived ids stay collision-free.
const individualSeparator = "|"

// IndividualGroupID derives the conversation id for a direct chat.
// Symmetric under argument order: the pair is sorted before joining.
func IndividualGroupID(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + individualSeparator + userB
}

// splitIndividualID recovers the participant pair from a derived id.
func splitIndividualID(groupID string) (string, string, bool) {
	a, b, ok := strings.Cut(groupID, individualSeparator)
	if !ok || a == "" || b == "" || strings.Contains(b, individualSeparator) {
		return "", "", false
	}
	return a, b, true
}

func isIndividualID(groupID string) bool {
	_, _, ok := splitIndividualID(groupID)
	return ok
}

// CanonicalGroupID maps a message to its conversation id: the stored
// group id for named-group messages, the derived pair id otherwise.
func CanonicalGroupID(msg models.Message) string {
	if msg.GroupID != "" {
		return msg.GroupID
	}
	return IndividualGroupID(msg.SenderID, msg.RecipientID)
}
