package model

import "time"

// MutedUser is a directed mute edge: the user identified by UserID does
// not want alerts triggered by posts from MutedUserID. The edge is
// ignored when the muted user is staff.
type MutedUser struct {
	UserID      string `gorm:"primaryKey"`
	MutedUserID string `gorm:"primaryKey"`
	CreatedAt   time.Time
}
