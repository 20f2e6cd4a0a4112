package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Group is a named collection of users

Id: primary key, use to identify a group
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Name: display name
NameLower: lowercased name used to match @mention tokens, unique
Mentionable: whether posts may @mention this group at all. Even when
	mentionable, the fan-out is skipped once the member count reaches
	MAX_USERS_NOTIFIED_PER_GROUP_MENTION.

Members: users in the group, "many-to-many" relation through GroupUser

*/

type Group struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Name        string
	NameLower   string `gorm:"uniqueIndex"`
	Mentionable bool
	Members     []*User `gorm:"many2many:group_users;"`
}

// GroupUser is the group membership join record. It carries the
// per-(user, group) notification level, mutable independently from the
// per-topic level. A muted level suppresses group-mention alerts only.
type GroupUser struct {
	GroupID           string `gorm:"primaryKey"`
	UserID            string `gorm:"primaryKey"`
	CreatedAt         time.Time
	NotificationLevel int `gorm:"default:1"`
}

// GroupArchivedMessage marks a private-message topic as archived for a
// group inbox. Topics with this marker are excluded from the group's
// inbox count in the message summary digest.
type GroupArchivedMessage struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	GroupID   string `gorm:"index"`
	TopicID   string `gorm:"index"`
}
