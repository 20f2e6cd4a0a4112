package alerter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/forumjet/alertmux/model"
)

// BuildExcerpt renders a plain-text excerpt of a post body for the
// real-time alert: markup and links are stripped down to their text,
// entities are decoded, whitespace is squashed and the result is bounded
// to maxLength runes.
func BuildExcerpt(raw string, maxLength int) string {
	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if maxLength > 0 && len(runes) > maxLength {
		return string(runes[:maxLength])
	}
	return text
}

// postURL builds the public URL of a post. An error means the URL cannot
// be resolved; callers omit the field instead of aborting the
// notification.
func (inv *invocation) postURL(post *model.Post) (string, error) {
	if post == nil || post.TopicID == "" {
		return "", errors.New("post has no topic")
	}
	if post.Topic.Id == "" {
		return "", errors.Errorf("topic %s not loaded for post %s", post.TopicID, post.Id)
	}
	return fmt.Sprintf("%s/t/%s/%d", strings.TrimRight(inv.setting.BASE_URL, "/"), post.TopicID, post.PostNumber), nil
}
