package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-chat-service/internal/models"
)

func TestIndividualGroupIDSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"s1", "t1"},
		{"t1", "s1"},
		{"a", "z"},
		{"01H", "01G"},
	}
	for _, pair := range pairs {
		assert.Equal(t, IndividualGroupID(pair[0], pair[1]), IndividualGroupID(pair[1], pair[0]))
	}
	assert.Equal(t, "s1|t1", IndividualGroupID("t1", "s1"))
}

func TestIndividualGroupIDDistinctPairs(t *testing.T) {
	assert.NotEqual(t, IndividualGroupID("a", "b"), IndividualGroupID("a", "c"))
	assert.NotEqual(t, IndividualGroupID("a", "b"), IndividualGroupID("b", "c"))
}

func TestSplitIndividualID(t *testing.T) {
	a, b, ok := splitIndividualID("s1|t1")
	require.True(t, ok)
	assert.Equal(t, "s1", a)
	assert.Equal(t, "t1", b)

	for _, bad := range []string{"s1", "|t1", "s1|", "a|b|c", ""} {
		_, _, ok := splitIndividualID(bad)
		assert.False(t, ok, "id %q must not parse", bad)
	}
}

func TestCanonicalGroupID(t *testing.T) {
	named := models.Message{GroupID: "g1", SenderID: "s1"}
	assert.Equal(t, "g1", CanonicalGroupID(named))

	direct := models.Message{SenderID: "t1", RecipientID: "s1"}
	assert.Equal(t, "s1|t1", CanonicalGroupID(direct))
}

func TestMessagesForGroupMatchesEitherDirection(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	sendDirect(t, e, student, teacher.ID, "from student")
	clock.Advance(time.Second)
	sendDirect(t, e, teacher, student.ID, "from teacher")

	msgs := e.MessagesForGroup(ctx, IndividualGroupID("t1", "s1"))
	require.Len(t, msgs, 2)
	assert.Equal(t, "from student", msgs[0].Content)
	assert.Equal(t, "from teacher", msgs[1].Content)
}

func TestGroupsForUserSynthesizesIndividualGroups(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	sendDirect(t, e, student, teacher.ID, "Hi")

	views := e.GroupsForUser(ctx, "t1")
	require.Len(t, views, 1)
	view := views[0]
	assert.Equal(t, models.GroupIndividual, view.Type)
	assert.Equal(t, IndividualGroupID("s1", "t1"), view.ID)
	assert.ElementsMatch(t, []string{"s1", "t1"}, view.Participants)
	require.NotNil(t, view.LastMessage)
	assert.Equal(t, "Hi", view.LastMessage.Content)
	assert.Equal(t, 1, view.UnreadCount)
}

func TestGroupsForUserOneGroupPerCounterpart(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	sendDirect(t, e, student, teacher.ID, "one")
	clock.Advance(time.Second)
	sendDirect(t, e, teacher, student.ID, "two")
	clock.Advance(time.Second)
	sendDirect(t, e, student, "t2", "other teacher")

	views := e.GroupsForUser(ctx, "s1")
	require.Len(t, views, 2)
}

func TestGroupsForUserOrdering(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	quiet, err := e.CreateGroup(ctx, "Quiet Group", "s1", []string{"t1"})
	require.NoError(t, err)
	alsoQuiet, err := e.CreateGroup(ctx, "Also Quiet", "s1", []string{"t2"})
	require.NoError(t, err)

	sendDirect(t, e, student, teacher.ID, "older")
	clock.Advance(time.Minute)
	sendDirect(t, e, student, "t2", "newer")

	views := e.GroupsForUser(ctx, "s1")
	require.Len(t, views, 4)

	assert.Equal(t, IndividualGroupID("s1", "t2"), views[0].ID, "latest activity first")
	assert.Equal(t, IndividualGroupID("s1", "t1"), views[1].ID)

	// Groups with no messages sort last, tiebroken by id.
	assert.Nil(t, views[2].LastMessage)
	assert.Nil(t, views[3].LastMessage)
	wantFirst, wantSecond := quiet.ID, alsoQuiet.ID
	if wantSecond < wantFirst {
		wantFirst, wantSecond = wantSecond, wantFirst
	}
	assert.Equal(t, wantFirst, views[2].ID)
	assert.Equal(t, wantSecond, views[3].ID)
}

func TestGroupsForUserLastMessageSkipsTombstones(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	sendDirect(t, e, student, teacher.ID, "keep")
	clock.Advance(time.Second)
	latest := sendDirect(t, e, student, teacher.ID, "retract")
	require.NoError(t, e.DeleteMessage(ctx, latest.ID, "s1"))

	views := e.GroupsForUser(ctx, "t1")
	require.Len(t, views, 1)
	require.NotNil(t, views[0].LastMessage)
	assert.Equal(t, "keep", views[0].LastMessage.Content)
}

func TestGroupsForUserExcludesNonMembers(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateGroup(ctx, "Staff", "t1", []string{"t2"})
	require.NoError(t, err)

	assert.Empty(t, e.GroupsForUser(ctx, "s1"))
}
