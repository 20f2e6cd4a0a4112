package alerter

import (
	"regexp"
	"strings"

	. "github.com/forumjet/alertmux/utils/log"

	"github.com/forumjet/alertmux/model"
)

// quotePattern matches quote markers of the form [quote="username, ..."]
// in the raw post body. Only the username part before the first comma is
// captured.
var quotePattern = regexp.MustCompile(`\[quote="([^,"]+),[^"]*"\]`)

// extractMentions matches the analyzer-supplied mention tokens against
// group names first, then against usernames, excluding the post's own
// author. The returned user slice is nil when no tokens remain after
// removing group matches; callers must treat nil as "no user mentions",
// distinct from an empty found-but-empty set.
func (inv *invocation) extractMentions() ([]*model.Group, []*model.User) {
	mentions := inv.post.Mentions()
	if len(mentions) == 0 {
		return nil, nil
	}

	var groups []*model.Group
	if err := inv.db.Where("name_lower IN ?", mentions).Find(&groups).Error; err != nil {
		Log.Error("fail to match mentioned groups for post ", inv.post.Id, " : ", err)
		return nil, nil
	}

	matchedGroup := make(map[string]bool, len(groups))
	for _, group := range groups {
		matchedGroup[group.NameLower] = true
	}

	remaining := []string{}
	for _, token := range mentions {
		if !matchedGroup[token] {
			remaining = append(remaining, token)
		}
	}

	if len(remaining) == 0 {
		return groups, nil
	}

	users := []*model.User{}
	err := inv.db.
		Where("username_lower IN ? AND id <> ?", remaining, inv.post.UserID).
		Find(&users).Error
	if err != nil {
		Log.Error("fail to match mentioned users for post ", inv.post.Id, " : ", err)
		return groups, nil
	}

	return groups, users
}

// extractQuotedUsers returns the users quoted in the post body,
// deduplicated, excluding the author. Usernames that don't resolve are
// silently dropped.
func (inv *invocation) extractQuotedUsers() []*model.User {
	seen := map[string]bool{}
	var users []*model.User

	for _, match := range quotePattern.FindAllStringSubmatch(inv.post.Raw, -1) {
		username := strings.ToLower(strings.TrimSpace(match[1]))
		if username == "" || seen[username] {
			continue
		}
		seen[username] = true

		var user model.User
		err := inv.db.
			Where("username_lower = ? AND id <> ?", username, inv.post.UserID).
			First(&user).Error
		if err != nil {
			continue
		}
		u := user
		users = append(users, &u)
	}
	return users
}

// extractLinkedUsers returns the authors of the posts this post links
// to. A link carrying only a topic resolves to that topic's first post.
// Unresolvable links and links back to the author yield nothing.
func (inv *invocation) extractLinkedUsers() []*model.User {
	var links []*model.TopicLink
	err := inv.db.
		Where("post_id = ? AND reflection = ?", inv.post.Id, false).
		Find(&links).Error
	if err != nil {
		Log.Error("fail to load topic links for post ", inv.post.Id, " : ", err)
		return nil
	}

	var users []*model.User
	for _, link := range links {
		var linked model.Post
		found := false
		if link.LinkPostID != nil {
			found = inv.db.Preload("User").Where("id = ?", *link.LinkPostID).First(&linked).Error == nil
		}
		if !found && link.LinkTopicID != nil {
			found = inv.db.Preload("User").
				Where("topic_id = ? AND post_number = ?", *link.LinkTopicID, 1).
				First(&linked).Error == nil
		}
		if !found || linked.UserID == inv.post.UserID || linked.User.Id == "" {
			continue
		}
		author := linked.User
		users = append(users, &author)
	}
	return users
}
