package alerter

import (
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/app_setting"
	"github.com/forumjet/alertmux/model"
	"github.com/forumjet/alertmux/realtime"
	"github.com/forumjet/alertmux/utils"
	"github.com/forumjet/alertmux/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

// newTestEngine spins up a temp DB backed engine with an in-memory
// realtime publisher.
func newTestEngine(t *testing.T) (*gorm.DB, *Alerter, *realtime.FakePublisher) {
	t.Helper()
	return newTestEngineWithSetting(t, app_setting.DefaultAlerterAppSetting())
}

func newTestEngineWithSetting(t *testing.T, setting app_setting.AlerterAppSetting) (*gorm.DB, *Alerter, *realtime.FakePublisher) {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	publisher := realtime.NewFakePublisher()
	engine := NewAlerter(db, NewGuardian(db), publisher, nil, setting)
	return db, engine, publisher
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Id:            uuid.New().String(),
		Username:      username,
		UsernameLower: strings.ToLower(username),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestStaffUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := createTestUser(t, db, username)
	user.Admin = true
	require.NoError(t, db.Save(user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, name string, members ...*model.User) *model.Group {
	t.Helper()
	group := &model.Group{
		Id:          uuid.New().String(),
		Name:        name,
		NameLower:   strings.ToLower(name),
		Mentionable: true,
	}
	require.NoError(t, db.Create(group).Error)
	for _, member := range members {
		require.NoError(t, db.Create(&model.GroupUser{
			GroupID:           group.Id,
			UserID:            member.Id,
			NotificationLevel: model.NotificationLevelRegular,
		}).Error)
	}
	return group
}

func createTestTopic(t *testing.T, db *gorm.DB, title string) *model.Topic {
	t.Helper()
	topic := &model.Topic{
		Id:        uuid.New().String(),
		Title:     title,
		Archetype: model.TopicArchetypeRegular,
	}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

func createTestPrivateMessage(t *testing.T, db *gorm.DB, title string, allowedUsers []*model.User, allowedGroups []*model.Group) *model.Topic {
	t.Helper()
	topic := &model.Topic{
		Id:        uuid.New().String(),
		Title:     title,
		Archetype: model.TopicArchetypePrivateMessage,
	}
	require.NoError(t, db.Create(topic).Error)
	for _, user := range allowedUsers {
		require.NoError(t, db.Create(&model.TopicAllowedUser{TopicID: topic.Id, UserID: user.Id}).Error)
	}
	for _, group := range allowedGroups {
		require.NoError(t, db.Create(&model.TopicAllowedGroup{TopicID: topic.Id, GroupID: group.Id}).Error)
	}
	return topic
}

func createTestPost(t *testing.T, db *gorm.DB, topic *model.Topic, author *model.User, postNumber int) *model.Post {
	t.Helper()
	post := &model.Post{
		Id:         uuid.New().String(),
		TopicID:    topic.Id,
		UserID:     author.Id,
		PostNumber: postNumber,
		PostType:   model.PostTypeRegular,
		Raw:        "hello world",
	}
	require.NoError(t, db.Create(post).Error)
	post.Topic = *topic
	post.User = *author
	return post
}

func setTopicUser(t *testing.T, db *gorm.DB, topic *model.Topic, user *model.User, level int, lastReadPostNumber int) {
	t.Helper()
	require.NoError(t, db.Create(&model.TopicUser{
		TopicID:            topic.Id,
		UserID:             user.Id,
		NotificationLevel:  level,
		LastReadPostNumber: lastReadPostNumber,
	}).Error)
}

func notificationsFor(t *testing.T, db *gorm.DB, userId string, notificationType int) []model.Notification {
	t.Helper()
	var notifications []model.Notification
	require.NoError(t, db.
		Where("user_id = ? AND notification_type = ?", userId, notificationType).
		Find(&notifications).Error)
	return notifications
}

func allNotificationsFor(t *testing.T, db *gorm.DB, userId string) []model.Notification {
	t.Helper()
	var notifications []model.Notification
	require.NoError(t, db.Where("user_id = ?", userId).Find(&notifications).Error)
	return notifications
}
