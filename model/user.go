package model

import (
	"time"

	"gorm.io/gorm"
)

// SystemUserId is the reserved id of the built-in system actor. The
// system user never receives notifications and never triggers them.
const SystemUserId = "system"

/*

User is a registered member of the forum

Id: primary key, use to identify a user
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Username: display handle, unique
UsernameLower: lowercased handle used for case-insensitive matching
Locale: BCP 47 locale used to render notification text, empty means default
Admin / Moderator: staff bits, staff posts pass through user mutes

Groups: groups the user belongs to, "many-to-many" relation through GroupUser

*/

type User struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	DeletedAt     gorm.DeletedAt
	Username      string `gorm:"uniqueIndex"`
	UsernameLower string `gorm:"uniqueIndex"`
	Locale        string
	Admin         bool
	Moderator     bool
	Groups        []*Group `gorm:"many2many:group_users;"`
}

// Staff returns true iff the user is an admin or a moderator.
func (u *User) Staff() bool {
	return u.Admin || u.Moderator
}
