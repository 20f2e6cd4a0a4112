// Package alerter decides, for every saved post, which users are
// alerted, through which notification type, and whether an alert is
// suppressed, collapsed with an earlier one, or broadcast in real time.
package alerter

import (
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/app_setting"
	"github.com/forumjet/alertmux/model"
	"github.com/forumjet/alertmux/realtime"
	"github.com/forumjet/alertmux/utils"
	. "github.com/forumjet/alertmux/utils/log"
)

// Alerter runs the post-save alert pipeline. It is safe to share one
// Alerter across posts, all per-post state lives on the invocation.
type Alerter struct {
	db       *gorm.DB
	guardian Guardian
	realtime realtime.Publisher
	cache    *utils.RedisClient
	setting  app_setting.AlerterAppSetting
}

// NewAlerter creates an alerter. cache may be nil, in which case unread
// count invalidation is skipped.
func NewAlerter(db *gorm.DB, guardian Guardian, publisher realtime.Publisher, cache *utils.RedisClient, setting app_setting.AlerterAppSetting) *Alerter {
	return &Alerter{
		db:       db,
		guardian: guardian,
		realtime: publisher,
		cache:    cache,
		setting:  setting,
	}
}

// PostCreated runs the full pipeline for a freshly created post and
// hands the post back once all notification side effects were attempted.
func (a *Alerter) PostCreated(post *model.Post) *model.Post {
	a.AfterSavePost(post, true)
	return post
}

// AfterSavePost is invoked once per saved post. newRecord distinguishes
// a fresh creation from an edit or any other update.
func (a *Alerter) AfterSavePost(post *model.Post, newRecord bool) {
	inv := a.newInvocation(post)
	inv.run(newRecord)
}

// invocation carries the state memoized for the duration of one
// AfterSavePost call: the audience sets of the post's topic and the
// group digest stats. It must never be reused across posts; a retried
// invocation recomputes everything.
type invocation struct {
	*Alerter
	post *model.Post

	allAllowed         []*model.User
	allAllowedLoaded   bool
	allowed            []*model.User
	allowedLoaded      bool
	groupAllowed       []*model.User
	groupAllowedLoaded bool

	groupStatsCache map[string][]groupStat
}

func (a *Alerter) newInvocation(post *model.Post) *invocation {
	inv := &invocation{
		Alerter:         a,
		post:            post,
		groupStatsCache: make(map[string][]groupStat),
	}
	inv.loadAssociations()
	return inv
}

// loadAssociations makes sure the owning topic and author are present,
// callers holding a bare row from the DB don't need to preload them.
func (inv *invocation) loadAssociations() {
	if inv.post.Topic.Id == "" && inv.post.TopicID != "" {
		inv.db.Where("id = ?", inv.post.TopicID).First(&inv.post.Topic)
	}
	if inv.post.User.Id == "" && inv.post.UserID != "" {
		inv.db.Where("id = ?", inv.post.UserID).First(&inv.post.User)
	}
}

func (inv *invocation) run(newRecord bool) {
	post := inv.post

	// The author starts out notified so no later phase alerts them about
	// their own post.
	notified := newUserSet(&post.User)

	// mentions (users/groups)
	mentionedGroups, mentionedUsers := inv.extractMentions()

	inv.expandGroupMentions(mentionedGroups, func(group *model.Group, users []*model.User) {
		inv.notifyUsers(subtractUsers(users, notified), model.NotificationGroupMentioned, &notifyOpts{group: group})
		notified.addAll(users)
	})

	if mentionedUsers != nil {
		inv.notifyUsers(subtractUsers(mentionedUsers, notified), model.NotificationMentioned, nil)
		notified.addAll(mentionedUsers)
	}

	// replies
	if newRecord && post.PostType == model.PostTypeRegular {
		if target := inv.replyNotificationTarget(); target != nil && !notified.contains(target.Id) {
			inv.notifyUsers([]*model.User{target}, model.NotificationReplied, nil)
			notified.add(target)
		}
	}

	// quotes
	quotedUsers := inv.extractQuotedUsers()
	inv.notifyUsers(subtractUsers(quotedUsers, notified), model.NotificationQuoted, nil)
	notified.addAll(quotedUsers)

	// linked
	linkedUsers := inv.extractLinkedUsers()
	inv.notifyUsers(subtractUsers(linkedUsers, notified), model.NotificationLinked, nil)
	notified.addAll(linkedUsers)

	// private messages
	if newRecord {
		if post.Topic.PrivateMessage() {
			// users granted directly, not covered by any allowed group
			for _, user := range inv.directlyTargetedUsers() {
				if notified.contains(user.Id) {
					continue
				}
				inv.createNotification(user, model.NotificationPrivateMessage, nil)
				notified.add(user)
			}
			// users granted through an allowed group: immediate alert when
			// watching, rolled into the group message summary when tracking,
			// nothing otherwise
			for _, user := range inv.indirectlyTargetedUsers() {
				if notified.contains(user.Id) {
					continue
				}
				level, ok := inv.topicNotificationLevel(user.Id)
				if !ok {
					continue
				}
				switch level {
				case model.NotificationLevelWatching:
					inv.createNotification(user, model.NotificationPrivateMessage, nil)
					notified.add(user)
				case model.NotificationLevelTracking:
					inv.notifyGroupSummary(user)
					notified.add(user)
				}
			}
		} else if post.PostType == model.PostTypeRegular {
			// Not a private message and not an automatic moderator action
			// post, fan out to every user watching the topic.
			inv.notifyWatchingTopicUsers(notified)
		}
	}

	if err := inv.syncGroupMentions(mentionedGroups); err != nil {
		Log.Error("fail to sync group mentions for post ", post.Id, " : ", err)
	}
}

// syncGroupMentions replaces the GroupMention rows of the post with one
// row per currently mentioned group. Idempotent on every save, an edit
// with no mentions leaves zero rows.
func (inv *invocation) syncGroupMentions(groups []*model.Group) error {
	return inv.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", inv.post.Id).Delete(&model.GroupMention{}).Error; err != nil {
			return err
		}
		for _, group := range groups {
			if err := tx.Create(&model.GroupMention{PostID: inv.post.Id, GroupID: group.Id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// replyNotificationTarget resolves the user this post replies to,
// excluding the author replying to themselves.
func (inv *invocation) replyNotificationTarget() *model.User {
	post := inv.post
	if post.ReplyToUserID == nil || *post.ReplyToUserID == post.UserID {
		return nil
	}
	var user model.User
	if err := inv.db.Where("id = ?", *post.ReplyToUserID).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

// notifyWatchingTopicUsers notifies every user watching the topic that
// has not been credited by an earlier phase.
func (inv *invocation) notifyWatchingTopicUsers(notified *userSet) {
	query := inv.db.Model(&model.User{}).
		Joins("JOIN topic_users tu ON tu.user_id = users.id AND tu.topic_id = ? AND tu.notification_level = ?",
			inv.post.TopicID, model.NotificationLevelWatching)
	if ids := notified.ids(); len(ids) > 0 {
		query = query.Where("users.id NOT IN ?", ids)
	}

	var watchers []*model.User
	if err := query.Find(&watchers).Error; err != nil {
		Log.Error("fail to load topic watchers for topic ", inv.post.TopicID, " : ", err)
		return
	}
	for _, watcher := range watchers {
		inv.createNotification(watcher, model.NotificationPosted, nil)
	}
}

// topicNotificationLevel returns the user's notification level for the
// post's topic. ok is false when the user has no TopicUser record.
func (inv *invocation) topicNotificationLevel(userId string) (level int, ok bool) {
	var tu model.TopicUser
	if err := inv.db.Where("topic_id = ? AND user_id = ?", inv.post.TopicID, userId).First(&tu).Error; err != nil {
		return 0, false
	}
	return tu.NotificationLevel, true
}
