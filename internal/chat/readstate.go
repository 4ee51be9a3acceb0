package chat

import "time"

type readKey struct {
	groupID string
	userID  string
}

// readTracker keeps per-group, per-user read markers. A missing marker
// means the user has never read the group, so every other-authored
// message counts as unread.
type readTracker struct {
	markers map[readKey]time.Time
}

func newReadTracker() *readTracker {
	return &readTracker{markers: make(map[readKey]time.Time)}
}

// markRead advances the marker to now, past everything currently in the
// group. Idempotent.
func (t *readTracker) markRead(groupID, userID string, now time.Time) {
	t.markers[readKey{groupID: groupID, userID: userID}] = now
}

// lastRead returns the marker, if any.
func (t *readTracker) lastRead(groupID, userID string) (time.Time, bool) {
	marker, ok := t.markers[readKey{groupID: groupID, userID: userID}]
	return marker, ok
}
