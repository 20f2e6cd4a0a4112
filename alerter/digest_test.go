package alerter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumjet/alertmux/model"
)

func TestGroupStatsCountsLiveInboxTopics(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	group := createTestGroup(t, db, "Support", bob)

	live := createTestPrivateMessage(t, db, "open item", []*model.User{author}, []*model.Group{group})
	archived := createTestPrivateMessage(t, db, "done item", []*model.User{author}, []*model.Group{group})
	require.NoError(t, db.Create(&model.GroupArchivedMessage{
		Id: uuid.New().String(), GroupID: group.Id, TopicID: archived.Id,
	}).Error)
	// regular topics never count towards a group inbox
	createTestTopic(t, db, "public topic")

	post := createTestPost(t, db, live, author, 1)
	inv := engine.newInvocation(post)

	stats := inv.groupStats(&post.Topic)
	assert.Empty(t, cmp.Diff(
		[]groupStat{{GroupId: group.Id, GroupName: "support", InboxCount: 1}},
		stats))
}

func TestGroupSummaryPayload(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "Bob")
	group := createTestGroup(t, db, "Support", bob)

	topic := createTestPrivateMessage(t, db, "inbox item", []*model.User{author}, []*model.Group{group})
	setTopicUser(t, db, topic, bob, model.NotificationLevelTracking, 0)

	post := createTestPost(t, db, topic, author, 1)
	engine.PostCreated(post)

	notifications := notificationsFor(t, db, bob.Id, model.NotificationGroupMessageSummary)
	require.Len(t, notifications, 1)

	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, group.Id, data.GroupId)
	assert.Equal(t, "support", data.GroupName)
	assert.Equal(t, 1, data.InboxCount)
	assert.Equal(t, "bob", data.Username)
}

func TestGroupSummaryReplacedPerGroup(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	support := createTestGroup(t, db, "support", bob)
	sales := createTestGroup(t, db, "sales", bob)

	first := createTestPrivateMessage(t, db, "first item", []*model.User{author}, []*model.Group{support})
	setTopicUser(t, db, first, bob, model.NotificationLevelTracking, 0)
	engine.PostCreated(createTestPost(t, db, first, author, 1))

	require.Len(t, notificationsFor(t, db, bob.Id, model.NotificationGroupMessageSummary), 1)

	// a second message in the same group's inbox rolls into the existing
	// summary instead of adding a row
	second := createTestPrivateMessage(t, db, "second item", []*model.User{author}, []*model.Group{support})
	setTopicUser(t, db, second, bob, model.NotificationLevelTracking, 0)
	engine.PostCreated(createTestPost(t, db, second, author, 1))

	notifications := notificationsFor(t, db, bob.Id, model.NotificationGroupMessageSummary)
	require.Len(t, notifications, 1)
	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, support.Id, data.GroupId)
	assert.Equal(t, 2, data.InboxCount)

	// a different group keeps its own summary
	other := createTestPrivateMessage(t, db, "sales item", []*model.User{author}, []*model.Group{sales})
	setTopicUser(t, db, other, bob, model.NotificationLevelTracking, 0)
	engine.PostCreated(createTestPost(t, db, other, author, 1))

	notifications = notificationsFor(t, db, bob.Id, model.NotificationGroupMessageSummary)
	assert.Len(t, notifications, 2)
}

func TestGroupSummarySkippedOnEmptyInbox(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	group := createTestGroup(t, db, "support", bob)

	topic := createTestPrivateMessage(t, db, "archived item", []*model.User{author}, []*model.Group{group})
	require.NoError(t, db.Create(&model.GroupArchivedMessage{
		Id: uuid.New().String(), GroupID: group.Id, TopicID: topic.Id,
	}).Error)
	setTopicUser(t, db, topic, bob, model.NotificationLevelTracking, 0)

	engine.PostCreated(createTestPost(t, db, topic, author, 1))

	assert.Empty(t, notificationsFor(t, db, bob.Id, model.NotificationGroupMessageSummary))
}
