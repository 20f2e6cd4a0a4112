package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Post types. Values are part of the storage schema, do not reorder.
const (
	PostTypeRegular = iota + 1
	PostTypeModeratorAction
)

/*

Post is a single message inside a topic

Id: primary key, use to identify a post
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

TopicID:
Topic: owning topic, "belongs-to" relation
UserID:
User: authoring user, "belongs-to" relation
PostNumber: sequence number of the post within its topic, starts at 1
PostType: regular post or an automatic moderator action post

Raw: post body in raw markup, quotes look like [quote="username, ..."]
RawMentions:
	@mention tokens extracted by the upstream post analyzer, stored as a
	comma separated lowercase list. This engine never parses markup for
	mentions itself.
ReplyToUserID:
ReplyToUser: the user whose post this one replies to, if any

TopicLinks: links to other posts/topics found in the body, supplied by
	the upstream analyzer, "has-many" relation

Identity is immutable, the body may be edited in place.

*/

type Post struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	DeletedAt     gorm.DeletedAt
	TopicID       string `gorm:"uniqueIndex:idx_posts_topic_post_number"`
	Topic         Topic
	UserID        string `gorm:"index"`
	User          User
	PostNumber    int `gorm:"uniqueIndex:idx_posts_topic_post_number"`
	PostType      int `gorm:"default:1"`
	Raw           string
	RawMentions   string
	ReplyToUserID *string
	ReplyToUser   *User
	TopicLinks    []*TopicLink `gorm:"foreignKey:PostID"`
}

// Mentions returns the analyzer-supplied mention tokens, lowercased and
// trimmed. Returns nil when the post mentions nothing.
func (p *Post) Mentions() []string {
	if p.RawMentions == "" {
		return nil
	}
	parts := strings.Split(p.RawMentions, ",")
	mentions := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token != "" {
			mentions = append(mentions, token)
		}
	}
	if len(mentions) == 0 {
		return nil
	}
	return mentions
}

/*

TopicLink is a resolved link from a post to another post or topic

PostID: post the link appears in
LinkPostID: linked post if the link targets a post directly
LinkTopicID: linked topic if the link only targets a topic
Reflection: true for the mirror record created on the link target side,
	reflections never trigger "linked" notifications

*/

type TopicLink struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	PostID      string `gorm:"index"`
	LinkPostID  *string
	LinkTopicID *string
	Reflection  bool
}
