package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingUsersExcludesViewer(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	groupID := IndividualGroupID("s1", "t1")

	e.SetTyping(ctx, groupID, "s1", true)
	e.SetTyping(ctx, groupID, "t1", true)

	assert.Equal(t, []string{"t1"}, e.TypingUsers(ctx, groupID, "s1"))
	assert.Equal(t, []string{"s1"}, e.TypingUsers(ctx, groupID, "t1"))
	assert.Equal(t, []string{"s1", "t1"}, e.TypingUsers(ctx, groupID, "s2"))
}

func TestTypingSignalExpires(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()
	groupID := "g1"

	e.SetTyping(ctx, groupID, "s1", true)
	assert.Equal(t, []string{"s1"}, e.TypingUsers(ctx, groupID, "t1"))

	clock.Advance(DefaultTypingTTL)
	assert.Equal(t, []string{"s1"}, e.TypingUsers(ctx, groupID, "t1"), "signal is live up to the window")

	clock.Advance(time.Millisecond)
	assert.Empty(t, e.TypingUsers(ctx, groupID, "t1"), "stale signal ages out without an explicit clear")
}

func TestTypingRenewalExtendsSignal(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	e.SetTyping(ctx, "g1", "s1", true)
	clock.Advance(DefaultTypingTTL / 2)
	e.SetTyping(ctx, "g1", "s1", true)
	clock.Advance(DefaultTypingTTL / 2)

	assert.Equal(t, []string{"s1"}, e.TypingUsers(ctx, "g1", "t1"))
}

func TestSetTypingFalseClearsImmediately(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.SetTyping(ctx, "g1", "s1", true)
	e.SetTyping(ctx, "g1", "s1", false)
	assert.Empty(t, e.TypingUsers(ctx, "g1", "t1"))
}

func TestTypingIsolatedPerGroup(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.SetTyping(ctx, "g1", "s1", true)
	assert.Empty(t, e.TypingUsers(ctx, "g2", "t1"))
}

func TestCustomTypingTTL(t *testing.T) {
	clock := newFakeClock()
	e := NewEngine(Options{Now: clock.Now, TypingTTL: 10 * time.Second})
	ctx := context.Background()

	e.SetTyping(ctx, "g1", "s1", true)
	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"s1"}, e.TypingUsers(ctx, "g1", "t1"))

	clock.Advance(6 * time.Second)
	assert.Empty(t, e.TypingUsers(ctx, "g1", "t1"))
}
