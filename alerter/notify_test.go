package alerter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumjet/alertmux/model"
)

func TestPostedNotificationsCollapse(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	watcher := createTestUser(t, db, "bob")

	topic := createTestTopic(t, db, "busy topic")
	createTestPost(t, db, topic, watcher, 1)
	setTopicUser(t, db, topic, watcher, model.NotificationLevelWatching, 1)

	second := createTestPost(t, db, topic, author, 2)
	engine.PostCreated(second)

	notifications := notificationsFor(t, db, watcher.Id, model.NotificationPosted)
	require.Len(t, notifications, 1)
	assert.Equal(t, 2, notifications[0].PostNumber)
	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, "alice", data.DisplayUsername)

	// a second unread post collapses into one notification, anchored at
	// the first unread post with a reply-count label
	third := createTestPost(t, db, topic, author, 3)
	engine.PostCreated(third)

	notifications = notificationsFor(t, db, watcher.Id, model.NotificationPosted)
	require.Len(t, notifications, 1)
	assert.Equal(t, 2, notifications[0].PostNumber)

	data, err = notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, "2 replies", data.DisplayUsername)
	assert.Equal(t, "alice", data.OriginalUsername)
}

func TestCollapsedLabelFollowsUserLocale(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	watcher := createTestUser(t, db, "bob")
	require.NoError(t, db.Model(watcher).Update("locale", "es").Error)
	watcher.Locale = "es"

	topic := createTestTopic(t, db, "busy topic")
	setTopicUser(t, db, topic, watcher, model.NotificationLevelWatching, 0)

	engine.PostCreated(createTestPost(t, db, topic, author, 1))
	engine.PostCreated(createTestPost(t, db, topic, author, 2))

	notifications := notificationsFor(t, db, watcher.Id, model.NotificationPosted)
	require.Len(t, notifications, 1)
	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, "2 respuestas", data.DisplayUsername)
}

func TestRepliedCollapsesWithPosted(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	topic := createTestTopic(t, db, "busy topic")
	setTopicUser(t, db, topic, bob, model.NotificationLevelWatching, 0)

	engine.PostCreated(createTestPost(t, db, topic, author, 1))
	require.Len(t, notificationsFor(t, db, bob.Id, model.NotificationPosted), 1)

	// a direct reply replaces the earlier posted notification instead of
	// stacking a second row
	reply := &model.Post{
		Id:            uuid.New().String(),
		TopicID:       topic.Id,
		UserID:        author.Id,
		PostNumber:    2,
		PostType:      model.PostTypeRegular,
		Raw:           "replying",
		ReplyToUserID: &bob.Id,
	}
	require.NoError(t, db.Create(reply).Error)
	engine.PostCreated(reply)

	assert.Empty(t, notificationsFor(t, db, bob.Id, model.NotificationPosted))
	notifications := notificationsFor(t, db, bob.Id, model.NotificationReplied)
	require.Len(t, notifications, 1)
	assert.Equal(t, 1, notifications[0].PostNumber)

	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, "2 replies", data.DisplayUsername)
}

func TestPrivateMessageNotificationsCollapse(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	topic := createTestPrivateMessage(t, db, "secret", []*model.User{author, bob}, nil)
	setTopicUser(t, db, topic, bob, model.NotificationLevelWatching, 0)

	engine.PostCreated(createTestPost(t, db, topic, author, 1))
	engine.PostCreated(createTestPost(t, db, topic, author, 2))

	notifications := notificationsFor(t, db, bob.Id, model.NotificationPrivateMessage)
	require.Len(t, notifications, 1)
	assert.Equal(t, 1, notifications[0].PostNumber)

	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, "2 replies", data.DisplayUsername)
}

func TestEditedNotificationSupersededOnNameChange(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	topic := createTestTopic(t, db, "a topic")
	post := createTestPost(t, db, topic, author, 1)

	inv := engine.newInvocation(post)
	inv.createNotification(bob, model.NotificationEdited, &notifyOpts{displayUsername: "alice"})

	notifications := notificationsFor(t, db, bob.Id, model.NotificationEdited)
	require.Len(t, notifications, 1)
	originalId := notifications[0].Id

	// same display name, the stored notification stands
	inv = engine.newInvocation(post)
	inv.createNotification(bob, model.NotificationEdited, &notifyOpts{displayUsername: "alice"})
	notifications = notificationsFor(t, db, bob.Id, model.NotificationEdited)
	require.Len(t, notifications, 1)
	assert.Equal(t, originalId, notifications[0].Id)

	// a different display name updates the row in place rather than
	// inserting a second one
	inv = engine.newInvocation(post)
	inv.createNotification(bob, model.NotificationEdited, &notifyOpts{displayUsername: "mallory"})
	notifications = notificationsFor(t, db, bob.Id, model.NotificationEdited)
	require.Len(t, notifications, 1)
	assert.Equal(t, originalId, notifications[0].Id)

	data, err := notifications[0].DataPayload()
	require.NoError(t, err)
	assert.Equal(t, "mallory", data.DisplayUsername)
}

func TestCreateNotificationSkipsSystemAndBlankUsers(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	system := &model.User{Id: model.SystemUserId, Username: "system", UsernameLower: "system"}
	require.NoError(t, db.Create(system).Error)

	topic := createTestTopic(t, db, "a topic")
	post := createTestPost(t, db, topic, author, 1)

	inv := engine.newInvocation(post)
	inv.createNotification(nil, model.NotificationMentioned, nil)
	inv.createNotification(&model.User{}, model.NotificationMentioned, nil)
	inv.createNotification(system, model.NotificationMentioned, nil)

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNotifierOverrideRespectsMute(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	actor := createTestUser(t, db, "carol")
	bob := createTestUser(t, db, "bob")
	require.NoError(t, db.Create(&model.MutedUser{UserID: bob.Id, MutedUserID: actor.Id}).Error)

	topic := createTestTopic(t, db, "a topic")
	post := createTestPost(t, db, topic, author, 1)

	// bob muted the acting user, not the post author
	inv := engine.newInvocation(post)
	inv.createNotification(bob, model.NotificationQuoted, &notifyOpts{notifierId: actor.Id})
	assert.Empty(t, allNotificationsFor(t, db, bob.Id))

	inv.createNotification(bob, model.NotificationQuoted, nil)
	assert.Len(t, notificationsFor(t, db, bob.Id, model.NotificationQuoted), 1)
}
