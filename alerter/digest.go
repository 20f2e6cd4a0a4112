package alerter

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/forumjet/alertmux/model"
	. "github.com/forumjet/alertmux/utils/log"
)

// groupStat is the inbox snapshot of one group allowed on a private
// message topic.
type groupStat struct {
	GroupId    string
	GroupName  string
	InboxCount int
}

// groupStats computes, for every group allowed on the topic, the number
// of live private-message topics in that group's inbox: granted to the
// group, not deleted, and without an archived-message marker. Computed
// once per invocation and cached for the triggering post's processing.
func (inv *invocation) groupStats(topic *model.Topic) []groupStat {
	if stats, ok := inv.groupStatsCache[topic.Id]; ok {
		return stats
	}

	var groups []*model.Group
	err := inv.db.Model(&model.Group{}).
		Joins("JOIN topic_allowed_groups tag ON tag.group_id = groups.id AND tag.topic_id = ?", topic.Id).
		Find(&groups).Error
	if err != nil {
		Log.Error("fail to load allowed groups for topic ", topic.Id, " : ", err)
		return nil
	}

	stats := make([]groupStat, 0, len(groups))
	for _, group := range groups {
		var inboxCount int64
		err := inv.db.Raw(`
			SELECT COUNT(*) FROM topics t
			JOIN topic_allowed_groups g ON g.group_id = ? AND g.topic_id = t.id
			LEFT JOIN group_archived_messages a ON a.topic_id = t.id AND a.group_id = g.group_id
			WHERE a.id IS NULL AND t.deleted_at IS NULL AND t.archetype = ?`,
			group.Id, model.TopicArchetypePrivateMessage).
			Scan(&inboxCount).Error
		if err != nil {
			Log.Error("fail to compute inbox count for group ", group.Id, " : ", err)
			continue
		}
		stats = append(stats, groupStat{
			GroupId:    group.Id,
			GroupName:  strings.ToLower(group.Name),
			InboxCount: int(inboxCount),
		})
	}

	inv.groupStatsCache[topic.Id] = stats
	return stats
}

// notifyGroupSummary maintains a single rolling group-message-summary
// notification per (user, group) instead of one notification per
// message. The previous summary is matched by the group id embedded in
// its payload, not by topic. No real-time alert is published.
func (inv *invocation) notifyGroupSummary(user *model.User) {
	stats := inv.groupStats(&inv.post.Topic)
	if len(stats) == 0 {
		return
	}

	// which allowed group covers this user
	var groupId string
	err := inv.db.Raw(`
		SELECT tag.group_id FROM topic_allowed_groups tag
		JOIN group_users gu ON gu.group_id = tag.group_id AND gu.user_id = ?
		WHERE tag.topic_id = ?
		LIMIT 1`, user.Id, inv.post.TopicID).
		Scan(&groupId).Error
	if err != nil || groupId == "" {
		return
	}

	var stat *groupStat
	for i := range stats {
		if stats[i].GroupId == groupId {
			stat = &stats[i]
			break
		}
	}
	if stat == nil || stat.InboxCount == 0 {
		return
	}

	var existing []model.Notification
	err = inv.db.
		Where("user_id = ? AND notification_type = ?", user.Id, model.NotificationGroupMessageSummary).
		Find(&existing).Error
	if err != nil {
		Log.Error("fail to load group summaries for user ", user.Id, " : ", err)
		return
	}
	for _, n := range existing {
		data, err := n.DataPayload()
		if err != nil || data.GroupId != stat.GroupId {
			continue
		}
		if err := inv.db.Where("id = ?", n.Id).Delete(&model.Notification{}).Error; err != nil {
			Log.Error("fail to replace group summary ", n.Id, " : ", err)
			return
		}
	}

	payload, err := json.Marshal(model.NotificationData{
		GroupId:    stat.GroupId,
		GroupName:  stat.GroupName,
		InboxCount: stat.InboxCount,
		Username:   user.UsernameLower,
	})
	if err != nil {
		Log.Error("fail to encode group summary payload for user ", user.Id, " : ", err)
		return
	}

	notification := model.Notification{
		Id:         uuid.New().String(),
		Type:       model.NotificationGroupMessageSummary,
		UserID:     user.Id,
		TopicID:    inv.post.TopicID,
		PostNumber: inv.post.PostNumber,
		Data:       datatypes.JSON(payload),
	}
	if err := inv.db.Create(&notification).Error; err != nil {
		Log.Error("fail to create group summary for user ", user.Id, " : ", err)
	}
}
