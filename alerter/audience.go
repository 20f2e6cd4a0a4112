package alerter

import (
	. "github.com/forumjet/alertmux/utils/log"

	"github.com/forumjet/alertmux/model"
)

// notAllowed filters out candidates that are never valid recipients for
// this post: a blank user, the system user, and the post's own author.
func (inv *invocation) notAllowed(u *model.User) bool {
	return u == nil ||
		u.Id == "" ||
		u.Id == model.SystemUserId ||
		u.Id == inv.post.UserID
}

func (inv *invocation) rejectNotAllowed(users []*model.User) []*model.User {
	res := make([]*model.User, 0, len(users))
	for _, u := range users {
		if inv.notAllowed(u) {
			continue
		}
		res = append(res, u)
	}
	return res
}

// allowedUsers returns the users granted explicitly on the post's topic.
// Memoized for the invocation.
func (inv *invocation) allowedUsers() []*model.User {
	if !inv.allowedLoaded {
		var users []*model.User
		err := inv.db.Model(&model.User{}).
			Joins("JOIN topic_allowed_users tau ON tau.user_id = users.id AND tau.topic_id = ?", inv.post.TopicID).
			Find(&users).Error
		if err != nil {
			Log.Error("fail to load allowed users for topic ", inv.post.TopicID, " : ", err)
		}
		inv.allowed = inv.rejectNotAllowed(users)
		inv.allowedLoaded = true
	}
	return inv.allowed
}

// allowedGroupUsers returns the members of the groups granted on the
// post's topic. Memoized for the invocation.
func (inv *invocation) allowedGroupUsers() []*model.User {
	if !inv.groupAllowedLoaded {
		var users []*model.User
		err := inv.db.Model(&model.User{}).
			Distinct("users.*").
			Joins("JOIN group_users gu ON gu.user_id = users.id").
			Joins("JOIN topic_allowed_groups tag ON tag.group_id = gu.group_id AND tag.topic_id = ?", inv.post.TopicID).
			Find(&users).Error
		if err != nil {
			Log.Error("fail to load allowed group users for topic ", inv.post.TopicID, " : ", err)
		}
		inv.groupAllowed = inv.rejectNotAllowed(users)
		inv.groupAllowedLoaded = true
	}
	return inv.groupAllowed
}

// allAllowedUsers is the full audience of a private message: explicit
// grants union allowed-group members. Memoized for the invocation.
func (inv *invocation) allAllowedUsers() []*model.User {
	if !inv.allAllowedLoaded {
		seen := newUserSet()
		all := []*model.User{}
		for _, u := range inv.allowedUsers() {
			if seen.contains(u.Id) {
				continue
			}
			seen.add(u)
			all = append(all, u)
		}
		for _, u := range inv.allowedGroupUsers() {
			if seen.contains(u.Id) {
				continue
			}
			seen.add(u)
			all = append(all, u)
		}
		inv.allAllowed = all
		inv.allAllowedLoaded = true
	}
	return inv.allAllowed
}

// directlyTargetedUsers are the explicitly granted users not already
// covered by an allowed group.
func (inv *invocation) directlyTargetedUsers() []*model.User {
	return subtractUsers(inv.allowedUsers(), newUserSet(inv.allowedGroupUsers()...))
}

// indirectlyTargetedUsers are users granted only through an allowed
// group.
func (inv *invocation) indirectlyTargetedUsers() []*model.User {
	return inv.allowedGroupUsers()
}

// expandGroupMentions yields each mentioned group the author may mention
// together with its members. A group whose member count is at or above
// the configured ceiling is skipped entirely, the GroupMention record
// still tracks the raw mention.
func (inv *invocation) expandGroupMentions(groups []*model.Group, yield func(group *model.Group, users []*model.User)) {
	if len(groups) == 0 || inv.post.UserID == "" {
		return
	}

	for _, group := range groups {
		if !group.Mentionable {
			continue
		}

		var memberCount int64
		if err := inv.db.Model(&model.GroupUser{}).Where("group_id = ?", group.Id).Count(&memberCount).Error; err != nil {
			Log.Error("fail to count members of group ", group.Id, " : ", err)
			continue
		}
		if memberCount >= int64(inv.setting.MAX_USERS_NOTIFIED_PER_GROUP_MENTION) {
			Log.Info("skip mention fan-out for group ", group.Id, " with ", memberCount, " members")
			continue
		}

		var members []*model.User
		err := inv.db.Model(&model.User{}).
			Joins("JOIN group_users gu ON gu.user_id = users.id AND gu.group_id = ?", group.Id).
			Find(&members).Error
		if err != nil {
			Log.Error("fail to load members of group ", group.Id, " : ", err)
			continue
		}
		yield(group, members)
	}
}
