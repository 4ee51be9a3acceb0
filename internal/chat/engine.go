package chat

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"edu-chat-service/internal/models"
)

// DefaultTypingTTL matches the client-side debounce that clears a
// typing flag after two seconds of inactivity. Signals older than the
// window are treated as absent at read time even if never cleared.
const DefaultTypingTTL = 2 * time.Second

// Options configures an Engine. Zero values select defaults.
type Options struct {
	// TypingTTL is the typing-signal expiry window.
	TypingTTL time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine is the chat facade: the single store of truth for messages,
// groups, read markers and typing signals.
//
// All state lives behind one RWMutex. Writes are serialized so ledger
// append order is a total order consistent with timestamp assignment;
// reads run concurrently and observe consistent snapshots. Business
// rules (ownership, validation) live here, never in the trackers.
type Engine struct {
	mu        sync.RWMutex
	ledger    *ledger
	named     map[string]*models.ChatGroup
	presence  *presenceTracker
	reads     *readTracker
	now       func() time.Time
	typingTTL time.Duration
	entropy   *ulid.MonotonicEntropy
	lastTS    time.Time
}

// NewEngine constructs an empty engine.
func NewEngine(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TypingTTL
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Engine{
		ledger:    newLedger(),
		named:     make(map[string]*models.ChatGroup),
		presence:  newPresenceTracker(),
		reads:     newReadTracker(),
		now:       now,
		typingTTL: ttl,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// SendMessageInput describes a send request. Exactly one of GroupID
// and RecipientID must be set.
type SendMessageInput struct {
	Sender      models.User
	Content     string
	GroupID     string
	RecipientID string
}

// SendMessage validates and appends a message to the ledger. The new
// message is immediately visible to every participant's queries; no
// read marker moves.
func (e *Engine) SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Message{}, fmt.Errorf("%w: content is empty", ErrValidation)
	}
	if (in.GroupID == "") == (in.RecipientID == "") {
		return models.Message{}, fmt.Errorf("%w: exactly one of group_id and recipient_id is required", ErrValidation)
	}
	if in.Sender.ID == "" {
		return models.Message{}, fmt.Errorf("%w: sender id is required", ErrValidation)
	}
	if err := validateUserID(in.Sender.ID); err != nil {
		return models.Message{}, err
	}
	if in.RecipientID != "" {
		if err := validateUserID(in.RecipientID); err != nil {
			return models.Message{}, err
		}
		if in.RecipientID == in.Sender.ID {
			return models.Message{}, fmt.Errorf("%w: cannot message yourself", ErrValidation)
		}
	}
	if in.GroupID != "" && strings.Contains(in.GroupID, individualSeparator) {
		// Direct conversations are addressed with recipient_id; their
		// derived ids are never valid send targets.
		return models.Message{}, fmt.Errorf("%w: invalid group id", ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ts := e.nextTimestamp()
	msg := &models.Message{
		ID:          e.newID(ts),
		GroupID:     in.GroupID,
		RecipientID: in.RecipientID,
		SenderID:    in.Sender.ID,
		SenderName:  in.Sender.Name,
		SenderRole:  in.Sender.Role,
		Content:     content,
		Timestamp:   ts,
	}
	e.ledger.append(msg)
	return *msg, nil
}

// EditMessage replaces the content of the requester's own message and
// stamps EditedAt. Tombstones cannot be edited.
func (e *Engine) EditMessage(ctx context.Context, messageID, newContent, requesterID string) (models.Message, error) {
	content := strings.TrimSpace(newContent)

	e.mu.Lock()
	defer e.mu.Unlock()

	msg, ok := e.ledger.get(messageID)
	if !ok {
		return models.Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	if msg.SenderID != requesterID {
		return models.Message{}, fmt.Errorf("%w: only the sender can edit a message", ErrForbidden)
	}
	if msg.Deleted() {
		return models.Message{}, ErrMessageDeleted
	}
	if content == "" {
		return models.Message{}, fmt.Errorf("%w: content is empty", ErrValidation)
	}

	editedAt := e.notBefore(msg.Timestamp)
	msg.Content = content
	msg.EditedAt = &editedAt
	return *msg, nil
}

// DeleteMessage tombstones the requester's own message. The record is
// retained for ordering and audit; read paths stop exposing its
// content. Deleting an already-deleted message is a no-op that keeps
// the first DeletedAt.
func (e *Engine) DeleteMessage(ctx context.Context, messageID, requesterID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg, ok := e.ledger.get(messageID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	if msg.SenderID != requesterID {
		return fmt.Errorf("%w: only the sender can delete a message", ErrForbidden)
	}
	if msg.Deleted() {
		return nil
	}

	deletedAt := e.notBefore(msg.Timestamp)
	msg.DeletedAt = &deletedAt
	return nil
}

// Message returns one message by id, tombstones redacted.
func (e *Engine) Message(ctx context.Context, messageID string) (models.Message, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	msg, ok := e.ledger.get(messageID)
	if !ok {
		return models.Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	return redact(*msg), nil
}

// CreateGroup registers a named group with an explicit roster. The
// owner is always a participant.
func (e *Engine) CreateGroup(ctx context.Context, name, ownerID string, memberIDs []string) (models.ChatGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ChatGroup{}, fmt.Errorf("%w: group name is empty", ErrValidation)
	}
	if ownerID == "" {
		return models.ChatGroup{}, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if err := validateUserID(ownerID); err != nil {
		return models.ChatGroup{}, err
	}
	for _, id := range memberIDs {
		if err := validateUserID(id); err != nil {
			return models.ChatGroup{}, err
		}
	}

	seen := map[string]struct{}{ownerID: {}}
	participants := []string{ownerID}
	for _, id := range memberIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}
	sort.Strings(participants)

	e.mu.Lock()
	defer e.mu.Unlock()

	group := &models.ChatGroup{
		ID:           e.newID(e.nextTimestamp()),
		Type:         models.GroupNamed,
		Name:         name,
		Participants: participants,
	}
	e.named[group.ID] = group
	return copyGroup(group), nil
}

// SetTyping upserts or clears the typing signal for (groupID, userID).
// Unknown ids are fine: a brand-new conversation has no prior state.
func (e *Engine) SetTyping(ctx context.Context, groupID, userID string, isTyping bool) {
	if groupID == "" || userID == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if isTyping {
		e.presence.set(groupID, userID, e.now(), e.typingTTL)
		return
	}
	e.presence.clear(groupID, userID)
}

// TypingUsers lists users with a live typing signal in the group, the
// viewer excluded.
func (e *Engine) TypingUsers(ctx context.Context, groupID, viewerID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	users := e.presence.typing(groupID, e.now(), e.typingTTL)
	filtered := users[:0]
	for _, uid := range users {
		if uid != viewerID {
			filtered = append(filtered, uid)
		}
	}
	return filtered
}

// MarkRead advances the user's read marker past every message currently
// in the group. Idempotent.
func (e *Engine) MarkRead(ctx context.Context, groupID, userID string) {
	if groupID == "" || userID == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	marker := e.now()
	if e.lastTS.After(marker) {
		marker = e.lastTS
	}
	e.reads.markRead(groupID, userID, marker)
}

// UnreadCount counts live messages in the group newer than the user's
// read marker, the user's own messages never included. No marker means
// every other-authored message counts.
func (e *Engine) UnreadCount(ctx context.Context, groupID, userID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unreadLocked(groupID, userID)
}

// MessagesForGroup returns the group's messages, tombstones included
// but redacted, in ascending timestamp order. Unknown groups yield an
// empty result, never an error.
func (e *Engine) MessagesForGroup(ctx context.Context, groupID string) []models.Message {
	e.mu.RLock()
	defer e.mu.RUnlock()

	msgs := []models.Message{}
	e.ledger.scan(func(msg *models.Message) {
		if CanonicalGroupID(*msg) == groupID {
			msgs = append(msgs, redact(*msg))
		}
	})
	return msgs
}

// GroupsForUser lists the named groups the user belongs to plus one
// synthesized individual group per counterpart ever messaged, each
// annotated with its last live message and the user's unread count.
// Most recently active first; groups with no messages sort last by id.
func (e *Engine) GroupsForUser(ctx context.Context, userID string) []models.GroupView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	views := []models.GroupView{}
	for _, group := range e.named {
		if containsString(group.Participants, userID) {
			views = append(views, models.GroupView{ChatGroup: copyGroup(group)})
		}
	}

	counterparts := map[string]struct{}{}
	e.ledger.scan(func(msg *models.Message) {
		if msg.GroupID != "" {
			return
		}
		switch userID {
		case msg.SenderID:
			counterparts[msg.RecipientID] = struct{}{}
		case msg.RecipientID:
			counterparts[msg.SenderID] = struct{}{}
		}
	})
	for counterpart := range counterparts {
		pair := []string{userID, counterpart}
		sort.Strings(pair)
		views = append(views, models.GroupView{ChatGroup: models.ChatGroup{
			ID:           IndividualGroupID(userID, counterpart),
			Type:         models.GroupIndividual,
			Participants: pair,
		}})
	}

	for i := range views {
		views[i].LastMessage = e.lastMessageLocked(views[i].ID)
		views[i].UnreadCount = e.unreadLocked(views[i].ID, userID)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].LastMessage, views[j].LastMessage
		switch {
		case a != nil && b != nil:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
			return views[i].ID < views[j].ID
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return views[i].ID < views[j].ID
		}
	})
	return views
}

// IsParticipant reports whether the user belongs to the group: roster
// membership for named groups, id membership for derived direct ids.
func (e *Engine) IsParticipant(ctx context.Context, groupID, userID string) bool {
	if userID == "" {
		return false
	}
	if a, b, ok := splitIndividualID(groupID); ok {
		return userID == a || userID == b
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	group, ok := e.named[groupID]
	return ok && containsString(group.Participants, userID)
}

// nextTimestamp assigns a strictly increasing creation instant under
// the write lock, so ordering holds even when the clock stalls.
func (e *Engine) nextTimestamp() time.Time {
	ts := e.now()
	if !ts.After(e.lastTS) {
		ts = e.lastTS.Add(time.Nanosecond)
	}
	e.lastTS = ts
	return ts
}

// notBefore clamps a mutation instant so EditedAt/DeletedAt never
// precede the message timestamp.
func (e *Engine) notBefore(ts time.Time) time.Time {
	now := e.now()
	if now.Before(ts) {
		return ts
	}
	return now
}

// newID mints a generation-ordered ULID. Must be called under the
// write lock: the monotonic entropy source is not safe for concurrent
// use.
func (e *Engine) newID(ts time.Time) string {
	return ulid.MustNew(ulid.Timestamp(ts), e.entropy).String()
}

func (e *Engine) lastMessageLocked(groupID string) *models.Message {
	var last *models.Message
	e.ledger.scan(func(msg *models.Message) {
		if msg.Deleted() || CanonicalGroupID(*msg) != groupID {
			return
		}
		last = msg
	})
	if last == nil {
		return nil
	}
	copied := *last
	return &copied
}

func (e *Engine) unreadLocked(groupID, userID string) int {
	marker, hasMarker := e.reads.lastRead(groupID, userID)
	count := 0
	e.ledger.scan(func(msg *models.Message) {
		if msg.Deleted() || msg.SenderID == userID || CanonicalGroupID(*msg) != groupID {
			return
		}
		if !hasMarker || msg.Timestamp.After(marker) {
			count++
		}
	})
	return count
}

func validateUserID(id string) error {
	if strings.Contains(id, individualSeparator) {
		return fmt.Errorf("%w: user id contains reserved character %q", ErrValidation, individualSeparator)
	}
	return nil
}

// redact blanks tombstone content on the way out; the ledger keeps the
// original text for audit.
func redact(msg models.Message) models.Message {
	if msg.Deleted() {
		msg.Content = ""
	}
	return msg
}

func copyGroup(group *models.ChatGroup) models.ChatGroup {
	copied := *group
	copied.Participants = append([]string(nil), group.Participants...)
	return copied
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
