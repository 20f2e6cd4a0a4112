// Package realtime delivers notification alerts to per-user channels.
// Publication is best effort: a failed publish is logged and dropped,
// it never rolls back the notification that triggered it.
package realtime

import "fmt"

// Alert is the payload published to a user's private notification
// channel when a notification of a notifiable type is first created.
type Alert struct {
	NotificationType int    `json:"notification_type"`
	PostNumber       int    `json:"post_number"`
	TopicTitle       string `json:"topic_title"`
	TopicId          string `json:"topic_id"`
	Excerpt          string `json:"excerpt"`
	Username         string `json:"username"`
	// PostURL is omitted when the post URL cannot be resolved.
	PostURL string `json:"post_url,omitempty"`
}

// Publisher pushes alerts to a user channel. Implementations must be
// fire-and-forget and never block waiting for subscriber acks.
type Publisher interface {
	Publish(channel string, alert Alert) error
}

// UserChannel returns the private alert channel of a user. Alerts on
// this channel are delivered only to that user id.
func UserChannel(userId string) string {
	return fmt.Sprintf("/notification-alert/%s", userId)
}
