package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Notification types. This enum is closed and shared with the storage
// schema, values are persisted and must never be reordered or reused.
const (
	NotificationMentioned = iota + 1
	NotificationReplied
	NotificationQuoted
	NotificationEdited
	NotificationLiked
	NotificationPrivateMessage
	NotificationInvitedToPrivateMessage
	NotificationInviteeAccepted
	NotificationPosted
	NotificationMovedPost
	NotificationLinked
	NotificationGrantedBadge
	NotificationInvitedToTopic
	NotificationGroupMentioned
	NotificationGroupMessageSummary
)

// NotifiableTypes is the subset of notification types that publish a
// real-time alert to the recipient's private channel when first created.
var NotifiableTypes = []int{
	NotificationMentioned,
	NotificationReplied,
	NotificationQuoted,
	NotificationPosted,
	NotificationLinked,
	NotificationPrivateMessage,
	NotificationGroupMentioned,
}

// IsNotifiable returns true iff the type publishes a real-time alert.
func IsNotifiable(notificationType int) bool {
	for _, t := range NotifiableTypes {
		if t == notificationType {
			return true
		}
	}
	return false
}

/*

Notification is a persisted alert record owned by one user

Id: primary key
CreatedAt: time when entity is created, also the display order

Type: notification type enum above, stored as notification_type
UserID: owning (recipient) user
TopicID: topic of the triggering post
PostNumber: anchor post number inside the topic. For collapsed
	notifications this is re-targeted to the user's first unread post.
Data: structured JSON payload, see NotificationData
Read: whether the user has seen the notification

(user_id, topic_id, post_number, notification_type) is unique among
live notifications. The constraint is enforced by the storage layer so
that two concurrent saves cannot both insert; a duplicate-key failure
is treated as "already notified".

*/

type Notification struct {
	Id         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	Type       int    `gorm:"column:notification_type;uniqueIndex:idx_notifications_dedup"`
	UserID     string `gorm:"index;uniqueIndex:idx_notifications_dedup"`
	TopicID    string `gorm:"uniqueIndex:idx_notifications_dedup"`
	PostNumber int    `gorm:"uniqueIndex:idx_notifications_dedup"`
	Data       datatypes.JSON
	Read       bool
}

// NotificationData is the structured payload persisted on a
// notification. Group fields are only set for group-triggered types,
// inbox count and username only for group message summaries.
type NotificationData struct {
	TopicTitle       string `json:"topic_title,omitempty"`
	OriginalPostId   string `json:"original_post_id,omitempty"`
	OriginalUsername string `json:"original_username,omitempty"`
	DisplayUsername  string `json:"display_username,omitempty"`
	GroupId          string `json:"group_id,omitempty"`
	GroupName        string `json:"group_name,omitempty"`
	InboxCount       int    `json:"inbox_count,omitempty"`
	Username         string `json:"username,omitempty"`
}

// DataPayload decodes the JSON payload of the notification.
func (n *Notification) DataPayload() (NotificationData, error) {
	var data NotificationData
	err := json.Unmarshal(n.Data, &data)
	return data, err
}

// GroupMention records that a post's current revision mentions a group.
// Rows for a post are fully replaced on every save so they always match
// the latest mention extraction.
type GroupMention struct {
	PostID    string `gorm:"primaryKey"`
	GroupID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
