package chat

import (
	"edu-chat-service/internal/models"
)

// ledger is the authoritative append-mostly list of all messages.
//
// It is pure shape: no validation, no ownership rules, no locking. The
// Engine owns the mutex and is the only caller. Append order equals
// timestamp order because the Engine assigns both under its write lock.
type ledger struct {
	messages []*models.Message
	byID     map[string]*models.Message
}

func newLedger() *ledger {
	return &ledger{byID: make(map[string]*models.Message)}
}

// append stores a new message. The id must be fresh.
func (l *ledger) append(msg *models.Message) {
	l.messages = append(l.messages, msg)
	l.byID[msg.ID] = msg
}

// get returns the live record for an id, tombstones included.
func (l *ledger) get(id string) (*models.Message, bool) {
	msg, ok := l.byID[id]
	return msg, ok
}

// scan calls fn for every message in append (= timestamp) order,
// tombstones included.
func (l *ledger) scan(fn func(*models.Message)) {
	for _, msg := range l.messages {
		fn(msg)
	}
}
