package alerter

import (
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/model"
)

// Guardian answers read-visibility questions. The engine consults it
// before creating or destroying any notification; a denial is a silent
// suppression, never an error.
type Guardian interface {
	CanSeePost(user *model.User, post *model.Post) bool
	CanSeeTopic(user *model.User, topic *model.Topic) bool
}

type dbGuardian struct {
	db *gorm.DB
}

// NewGuardian returns the default DB-backed guardian: deleted content is
// invisible to non-staff, private messages are visible only to their
// audience.
func NewGuardian(db *gorm.DB) Guardian {
	return &dbGuardian{db: db}
}

func (g *dbGuardian) CanSeePost(user *model.User, post *model.Post) bool {
	if post == nil || post.Id == "" {
		return false
	}
	if post.DeletedAt.Valid && (user == nil || !user.Staff()) {
		return false
	}
	topic := post.Topic
	if topic.Id == "" {
		if err := g.db.Where("id = ?", post.TopicID).First(&topic).Error; err != nil {
			return false
		}
	}
	return g.CanSeeTopic(user, &topic)
}

func (g *dbGuardian) CanSeeTopic(user *model.User, topic *model.Topic) bool {
	if topic == nil || topic.Id == "" {
		return false
	}
	if topic.DeletedAt.Valid {
		return user != nil && user.Staff()
	}
	if !topic.PrivateMessage() {
		return true
	}
	if user == nil || user.Id == "" {
		return false
	}
	if user.Staff() {
		return true
	}

	var count int64
	err := g.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT user_id FROM topic_allowed_users
			WHERE topic_id = ? AND user_id = ?
			UNION
			SELECT gu.user_id FROM topic_allowed_groups tag
			JOIN group_users gu ON gu.group_id = tag.group_id
			WHERE tag.topic_id = ? AND gu.user_id = ?
		) audience`, topic.Id, user.Id, topic.Id, user.Id).
		Scan(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}
