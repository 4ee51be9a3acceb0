package chat

import (
	"sort"
	"time"
)

// presenceTracker holds transient typing signals keyed by
// (groupID, userID). A signal older than the expiry window counts as
// absent even when the caller never cleared it, so a client that
// disconnects mid-keystroke ages out on its own. No background sweep:
// expiry is evaluated against the clock at read time.
type presenceTracker struct {
	signals map[string]map[string]time.Time
}

func newPresenceTracker() *presenceTracker {
	return &presenceTracker{signals: make(map[string]map[string]time.Time)}
}

// set upserts the typing signal for (groupID, userID). Signals in the
// same group that already expired are dropped while we hold the write
// lock anyway.
func (t *presenceTracker) set(groupID, userID string, now time.Time, ttl time.Duration) {
	group, ok := t.signals[groupID]
	if !ok {
		group = make(map[string]time.Time)
		t.signals[groupID] = group
	}
	for uid, setAt := range group {
		if now.Sub(setAt) > ttl {
			delete(group, uid)
		}
	}
	group[userID] = now
}

// clear removes the signal immediately, no need to wait for expiry.
func (t *presenceTracker) clear(groupID, userID string) {
	group, ok := t.signals[groupID]
	if !ok {
		return
	}
	delete(group, userID)
	if len(group) == 0 {
		delete(t.signals, groupID)
	}
}

// typing returns every user with a live signal in the group, sorted for
// stable output. Self-exclusion is the facade's job, not ours: the
// tracker has no notion of a viewer.
func (t *presenceTracker) typing(groupID string, now time.Time, ttl time.Duration) []string {
	group, ok := t.signals[groupID]
	if !ok {
		return nil
	}
	users := make([]string, 0, len(group))
	for uid, setAt := range group {
		if now.Sub(setAt) <= ttl {
			users = append(users, uid)
		}
	}
	sort.Strings(users)
	return users
}
