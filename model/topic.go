package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	TopicArchetypeRegular        = "regular"
	TopicArchetypePrivateMessage = "private_message"
)

// Per-topic (and per-group) notification levels. Values are part of the
// storage schema, do not reorder.
const (
	NotificationLevelMuted = iota
	NotificationLevelRegular
	NotificationLevelTracking
	NotificationLevelWatching
)

/*

Topic is an ordered container of posts

Id: primary key, use to identify a topic
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Title: topic title in plain text
Archetype: "regular" or "private_message"

AllowedUsers: explicit per-user grants on a private message,
	"many-to-many" relation through TopicAllowedUser
AllowedGroups: group grants on a private message, "many-to-many"
	relation through TopicAllowedGroup

The full audience of a private message is AllowedUsers union the
members of AllowedGroups.

*/

type Topic struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	DeletedAt     gorm.DeletedAt
	Title         string
	Archetype     string   `gorm:"default:regular"`
	AllowedUsers  []*User  `gorm:"many2many:topic_allowed_users;"`
	AllowedGroups []*Group `gorm:"many2many:topic_allowed_groups;"`
}

// PrivateMessage returns true iff the topic is a private message.
func (t *Topic) PrivateMessage() bool {
	return t.Archetype == TopicArchetypePrivateMessage
}

// TopicUser is the per-(user, topic) preference record. The level
// drives both suppression (muted) and watcher fan-out (watching), the
// last read post number anchors collapsed notifications.
type TopicUser struct {
	TopicID            string `gorm:"primaryKey"`
	UserID             string `gorm:"primaryKey"`
	CreatedAt          time.Time
	NotificationLevel  int `gorm:"default:1"`
	LastReadPostNumber int
}

// TopicAllowedUser is the explicit user grant join record on a private
// message topic.
type TopicAllowedUser struct {
	TopicID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// TopicAllowedGroup is the group grant join record on a private message
// topic.
type TopicAllowedGroup struct {
	TopicID   string `gorm:"primaryKey"`
	GroupID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
