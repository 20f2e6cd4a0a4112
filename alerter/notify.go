package alerter

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/locale"
	"github.com/forumjet/alertmux/model"
	"github.com/forumjet/alertmux/realtime"
	. "github.com/forumjet/alertmux/utils/log"
)

// notifyOpts tweaks a single notification creation.
type notifyOpts struct {
	// group marks a group-triggered notification, its id and name are
	// embedded in the payload and its per-user level can suppress it.
	group *model.Group
	// displayUsername overrides the attributed username.
	displayUsername string
	// notifierId overrides the acting user checked against mute edges,
	// defaults to the post's author.
	notifierId string
}

// notifyUsers creates one notification per user. On a private message
// the candidates are first scoped down to the topic's full audience.
func (inv *invocation) notifyUsers(users []*model.User, notificationType int, opts *notifyOpts) {
	if inv.post.Topic.PrivateMessage() {
		users = intersectUsers(users, newUserSet(inv.allAllowedUsers()...))
	}
	for _, user := range users {
		inv.createNotification(user, notificationType, opts)
	}
}

// createNotification persists one notification for the user, applying
// the mute and visibility policy, the dedup key, collapsing, and the
// real-time alert. All suppressions are silent: notification delivery is
// a best-effort side channel and must never fail the post save.
func (inv *invocation) createNotification(user *model.User, notificationType int, opts *notifyOpts) {
	if opts == nil {
		opts = &notifyOpts{}
	}
	post := inv.post

	if user == nil || user.Id == "" || user.Id == model.SystemUserId {
		return
	}

	// Make sure the user can see the post
	if !inv.guardian.CanSeePost(user, post) {
		return
	}

	// apply muting here, staff posts always pass through mutes
	notifierId := opts.notifierId
	if notifierId == "" {
		notifierId = post.UserID
	}
	if notifierId != "" && inv.mutedBy(user.Id, notifierId) {
		return
	}

	// skip if muted on the topic
	if level, ok := inv.topicNotificationLevel(user.Id); ok && level == model.NotificationLevelMuted {
		return
	}

	// skip if muted on the triggering group
	if opts.group != nil {
		var gu model.GroupUser
		err := inv.db.Where("group_id = ? AND user_id = ?", opts.group.Id, user.Id).First(&gu).Error
		if err == nil && gu.NotificationLevel == model.NotificationLevelMuted {
			return
		}
	}

	// Don't notify the same user about the same notification on the same
	// post. The only exception is an edited notification whose display
	// name changed, which supersedes the stored one in place.
	var existing model.Notification
	hasExisting := inv.db.
		Where("user_id = ? AND topic_id = ? AND post_number = ? AND notification_type = ?",
			user.Id, post.TopicID, post.PostNumber, notificationType).
		Order("created_at DESC").
		First(&existing).Error == nil

	if hasExisting {
		data, err := existing.DataPayload()
		supersedes := err == nil &&
			existing.Type == model.NotificationEdited &&
			data.DisplayUsername != opts.displayUsername
		if !supersedes {
			return
		}
	}

	collapsed := false

	if notificationType == model.NotificationReplied || notificationType == model.NotificationPosted {
		inv.destroyNotifications(user, []int{model.NotificationReplied, model.NotificationPosted}, &post.Topic)
		collapsed = true
	}

	if notificationType == model.NotificationPrivateMessage {
		inv.destroyNotifications(user, []int{model.NotificationPrivateMessage}, &post.Topic)
		collapsed = true
	}

	originalUsername := opts.displayUsername
	if originalUsername == "" {
		originalUsername = post.User.Username
	}
	displayUsername := originalUsername

	// A collapsed notification re-anchors on the user's first unread post
	// and replaces the attribution with a localized reply count when more
	// than one post is unread.
	anchorPostNumber := post.PostNumber
	if collapsed {
		if first := inv.firstUnreadPost(user, &post.Topic); first != nil {
			anchorPostNumber = first.PostNumber
		}
		if count := inv.unreadCount(user, &post.Topic); count > 1 {
			displayUsername = locale.Replies(user.Locale, count)
		}
	}

	data := model.NotificationData{
		TopicTitle:       post.Topic.Title,
		OriginalPostId:   post.Id,
		OriginalUsername: originalUsername,
		DisplayUsername:  displayUsername,
	}
	if opts.group != nil {
		data.GroupId = opts.group.Id
		data.GroupName = opts.group.Name
	}
	payload, err := json.Marshal(data)
	if err != nil {
		Log.Error("fail to encode notification payload for post ", post.Id, " : ", err)
		return
	}

	if hasExisting {
		err := inv.db.Model(&model.Notification{}).
			Where("id = ?", existing.Id).
			Update("data", datatypes.JSON(payload)).Error
		if err != nil {
			Log.Error("fail to supersede edited notification ", existing.Id, " : ", err)
		}
		return
	}

	notification := model.Notification{
		Id:         uuid.New().String(),
		Type:       notificationType,
		UserID:     user.Id,
		TopicID:    post.TopicID,
		PostNumber: anchorPostNumber,
		Data:       datatypes.JSON(payload),
	}
	if err := inv.db.Create(&notification).Error; err != nil {
		// A concurrent save won the dedup key, that user is already
		// notified and this is not a failure.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return
		}
		Log.Error("fail to create notification for user ", user.Id, " on post ", post.Id, " : ", err)
		return
	}

	if !model.IsNotifiable(notificationType) {
		return
	}

	alert := realtime.Alert{
		NotificationType: notificationType,
		PostNumber:       post.PostNumber,
		TopicTitle:       post.Topic.Title,
		TopicId:          post.TopicID,
		Excerpt:          BuildExcerpt(post.Raw, inv.setting.EXCERPT_LENGTH),
		Username:         originalUsername,
	}
	// we may have an invalid post somehow, dont blow up
	if url, err := inv.postURL(post); err == nil {
		alert.PostURL = url
	}
	if err := inv.realtime.Publish(realtime.UserChannel(user.Id), alert); err != nil {
		Log.Error("fail to publish notification alert for user ", user.Id, " : ", err)
	}
}

// destroyNotifications removes the user's notifications of the given
// types for the topic. Removal is visibility gated: nothing happens when
// the user cannot currently see the topic. The cached unread count is
// invalidated so counts sync up correctly.
func (inv *invocation) destroyNotifications(user *model.User, types []int, topic *model.Topic) {
	if user == nil || user.Id == "" {
		return
	}
	if !inv.guardian.CanSeeTopic(user, topic) {
		return
	}

	res := inv.db.
		Where("user_id = ? AND topic_id = ? AND notification_type IN ?", user.Id, topic.Id, types).
		Delete(&model.Notification{})
	if res.Error != nil {
		Log.Error("fail to destroy notifications for user ", user.Id, " : ", res.Error)
		return
	}

	if res.RowsAffected > 0 && inv.cache != nil {
		if err := inv.cache.InvalidateUnreadNotificationCount(user.Id); err != nil {
			Log.Warn("fail to invalidate unread count cache for user ", user.Id, " : ", err)
		}
	}
}

// mutedBy returns true iff the user muted the notifier and the notifier
// is neither an admin nor a moderator.
func (inv *invocation) mutedBy(userId string, notifierId string) bool {
	var count int64
	err := inv.db.Model(&model.MutedUser{}).
		Joins("JOIN users ON users.id = muted_users.muted_user_id AND NOT users.admin AND NOT users.moderator").
		Where("muted_users.user_id = ? AND muted_users.muted_user_id = ?", userId, notifierId).
		Count(&count).Error
	if err != nil {
		Log.Error("fail to check mute edge for user ", userId, " : ", err)
		return false
	}
	return count > 0
}

// unreadPostsQuery scopes the topic's posts to the ones the user has not
// read yet and that concern them: posts past the last read post number
// that either reply to the user directly or sit in a topic the user
// watches.
func (inv *invocation) unreadPostsQuery(user *model.User, topic *model.Topic) *gorm.DB {
	return inv.db.Model(&model.Post{}).
		Where("topic_id = ?", topic.Id).
		Where(`post_number > COALESCE((
			SELECT last_read_post_number FROM topic_users tu
			WHERE tu.user_id = ? AND tu.topic_id = ?), 0)`,
			user.Id, topic.Id).
		Where(`reply_to_user_id = ? OR EXISTS (
			SELECT 1 FROM topic_users tu
			WHERE tu.user_id = ? AND
				tu.topic_id = ? AND
				tu.notification_level = ?)`,
			user.Id, user.Id, topic.Id, model.NotificationLevelWatching)
}

// firstUnreadPost is the earliest unread post, used as the collapsed
// notification anchor. Returns nil when everything is read.
func (inv *invocation) firstUnreadPost(user *model.User, topic *model.Topic) *model.Post {
	var post model.Post
	if err := inv.unreadPostsQuery(user, topic).Order("post_number").First(&post).Error; err != nil {
		return nil
	}
	return &post
}

// unreadCount is the number of unread posts, used for the collapsed
// "N replies" label.
func (inv *invocation) unreadCount(user *model.User, topic *model.Topic) int {
	var count int64
	if err := inv.unreadPostsQuery(user, topic).Count(&count).Error; err != nil {
		Log.Error("fail to count unread posts for user ", user.Id, " : ", err)
		return 0
	}
	return int(count)
}
